// Command tagdump opens a media file, sniffs its container format by magic
// bytes, and dumps whatever element tree, ID3 frames, or Vorbis comment
// fields it finds. It replaces the teacher's example/extracter, which was
// hardcoded to one Matroska file and one codec; tagdump instead exercises
// the public API of every container package this module builds.
package main

import "github.com/smartsharp/tagparser/cmd/tagdump/cmd"

func main() {
	cmd.Execute()
}
