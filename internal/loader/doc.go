// Package loader opens float image files and auto-detects their format.
//
// Supported formats:
//   - PFM: Portable Float Map, 1-band ("Pf") and 3-band ("PF")
//   - KTX2: Khronos Texture 2.0 with uncompressed float formats
//
// Example:
//
//	img, format, err := loader.Open("path/to/probe.pfm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s: %dx%d, %d channels\n", format, img.Width(), img.Height(), img.Format.Channels)
package loader
