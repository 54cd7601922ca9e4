// Package backend provides an HTTP client for the product analysis backend.
//
// # Overview
//
// The backend accepts an Amazon product URL, starts a scraping job and
// exposes its progress. This package owns the wire types for that API, the
// local URL validation that runs before anything is sent, and the client
// that performs the calls.
//
//   - client.go: HTTP client and request/response handling
//   - types.go: Data structures mirroring the backend JSON schema
//   - validate.go: Struct-tag validation of submitted URLs
//
// # Client Usage
//
//	client, err := backend.NewClient("127.0.0.1:5000")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	resp, err := client.Submit(ctx, backend.AnalysisRequest{URL: url})
//	if err != nil {
//		log.Printf("submit failed: %v", err)
//	}
//
//	status, err := client.FetchStatus(ctx, resp.ProcessID)
//
// # API Endpoints
//
//   - GET /: Liveness banner
//   - POST /registro: Submit {"url": ...}, returns the process id
//   - GET /status/{id}: Progress snapshot for a process
//
// Field names on the wire are Portuguese (sucesso, progresso, etapa_atual,
// timestamp_lega, erro) and are mapped onto English Go fields.
//
// # Error Handling
//
// A response whose body carries a non-empty "erro" field is an answer, even
// when the HTTP status is 4xx or 5xx; it is decoded and returned without
// error so callers can show the server's message. Everything else that
// fails (connection refused, timeout, non-2xx without "erro", malformed
// JSON) wraps ErrTransport:
//
//	if errors.Is(err, backend.ErrTransport) { ... }
//
// # Validation
//
// AnalysisRequest.Validate uses go-playground/validator tags. A URL must
// be non-empty and contain both "amazon.com.br" and "/dp/". Validation is
// purely textual; the scheme is not required.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package backend
