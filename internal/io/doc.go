// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Directory creation
//   - Plain and atomic file writing
//   - Cover image resizing and format conversion
//
// # File Operations
//
//	// Ensure the album directory exists
//	err := ioutils.EnsureDir("/music/Artist - Album")
//
//	// Write a small artifact (lyrics, folder cover)
//	err := ioutils.WriteFile("/music/Artist - Album/folder.jpg", cover)
//
//	// Stage-and-rename so readers never see a partial file
//	err := ioutils.WriteFileAtomic("/music/Artist - Album/01. Song.lrc", lyrics)
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 1000x1000
//	resized, _ := svc.ResizeImage(imageData, 1000, 1000)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(pngData)
package ioutils
