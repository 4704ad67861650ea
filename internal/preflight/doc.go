// Package preflight gives advisory hints about a document before it is
// submitted. It reads the EXIF block of JPEG and PNG scans for the capture
// resolution and for metadata that identifies a place, a device or a person.
// Hints are informational only; validation alone decides what is rejected.
package preflight
