// Package wave reads, edits and writes PCM RIFF/WAVE files.
//
// A Container is opened on a file and parsed; the fmt chunk is decoded, other
// subchunks are kept as generic Chunk records and only the position of the
// data chunk is recorded. Samples are then either streamed block by block
// from the file or loaded into memory, where they can be read and edited at
// random:
//
//	c, err := wave.ParseFile("in.wav")
//	...
//	c.DataRewind()
//	for {
//		block, err := c.NextBlock()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		...
//	}
//
// Integer samples of 1 to 4 bytes go through the Word codec, which decodes
// and encodes signed and unsigned numbers in either byte order.
//
// Container and Grid both implement DomainData, so a transform can take its
// input from one and write its output into the other. Copy moves samples
// between any two DomainData stores.
//
// Writing always produces a canonical 44 byte header PCM file; extensible
// format fields and generic subchunks are not written back.
package wave
