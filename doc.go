// Package framecoder is a pure Go block-based, motion-compensated video
// frame coder.
//
// Frames are 4:2:0 *image.YCbCr images whose width and height are
// multiples of 16. Each frame is split into 8x8 blocks grouped into
// macroblocks and superblocks. Every macroblock is predicted either intra
// or from the previous (or golden) reconstructed frame with half-pel
// motion vectors. The residual is transformed with an integer 8x8 DCT,
// quantized against a table selected by a quality index from 0 to 63, and
// entropy coded with Huffman tables built from the frame's token
// statistics. The serialized tables travel in the stream.
//
// The package covers only the frame payloads. Framing them in a container
// is left to the caller.
//
// Basic usage:
//
//	enc, err := framecoder.NewEncoder(640, 480, nil)
//	...
//	pkt, err := enc.Encode(frame)
//
//	dec, err := framecoder.NewDecoder(640, 480, nil)
//	...
//	img, err := dec.Decode(pkt.Data)
package framecoder
