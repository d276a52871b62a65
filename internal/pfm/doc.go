// Package pfm reads and writes Portable Float Map images.
//
// A PFM file is a short ASCII header followed by raw IEEE-754 float32 samples:
//
//	Format Structure:
//	  [2 bytes: Magic "Pf" (grayscale) or "PF" (color)]
//	  [whitespace]
//	  [ASCII width] [whitespace] [ASCII height] [whitespace]
//	  [ASCII scale factor]
//	  [optional '\r'] ['\n']
//	  [height rows, bottom row first, width pixels each, 1 or 3 floats per pixel]
//
// The sign of the scale factor selects the byte order of the samples: a
// negative scale means little-endian, a positive one big-endian. Its magnitude
// is parsed but not applied to pixel values.
//
// Decoded images are stored top row first in host byte order, ready to be
// uploaded as R32F or RGB32F textures.
//
// Example:
//
//	img, err := pfm.Load("memorial.pfm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(img.Width(), img.Height(), img.Format.Channels)
package pfm
