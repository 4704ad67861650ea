// Package client submits documents to the remote analysis service and
// classifies every outcome.
//
// A Client performs exactly one HTTP exchange per Submit. The request is a
// multipart/form-data POST to {baseURL}/analyze with one part named "file"
// carrying the document's declared media type. The outcome is either an
// *model.AnalysisResult or an *model.AnalysisError:
//
//   - no HTTP response at all (refused, DNS, reset, timeout, cancelled): NetworkUnreachable
//   - non-2xx with a non-empty string "detail": ServiceRejected with that detail
//   - any other non-2xx: ServiceRejectedUnknown
//   - 2xx whose body is not a JSON object: ServiceRejectedUnknown
//
// Transport construction supports an optional SOCKS5 proxy and static headers
// (for example an API gateway key) injected by a RoundTripper wrapper.
package client
