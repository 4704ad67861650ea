// Package model defines the data shared by the mediclaim components.
//
// This package contains the following main types:
//   - Document: a file selected for analysis, with its declared media type
//   - AnalysisResult: the immutable, normalized outcome of one analysis
//   - Confidence and Tier: the display form of the service's confidence score
//   - AnalysisError: the closed set of failures a session can end in
//
// Response and its section types describe the wire shape of POST /analyze.
// They decode loosely because the service output is generated by a language
// model; FromResponse turns them into an AnalysisResult whose lists are never nil.
package model
