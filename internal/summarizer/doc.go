// Package summarizer produces short sales analyses of order listings.
//
// Three providers are available: Gemini (generateContent REST API),
// OpenAI (chat completions) and a local heuristic digest that works
// offline. Remote calls are retried with exponential backoff and jitter,
// and results are kept in an LRU cache keyed by the SHA-256 of the
// model and prompt.
//
// # Provider Selection
//
//  1. If ORDERDESK_SUMMARY_PROVIDER is set, use it
//  2. Else if GEMINI_API_KEY is set, use Gemini
//  3. Else if OPENAI_API_KEY is set, use OpenAI
//  4. Else no provider is configured and New fails with ErrNoProviderEnabled
//
// The local provider is never picked implicitly; it must be selected with
// ORDERDESK_SUMMARY_PROVIDER=local.
//
// # Usage
//
//	s, err := summarizer.NewFromEnv()
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	sum, err := s.Summarize(ctx, summarizer.Request{Text: report.FormatForSummary(reports)})
//
// Input text is expected in the layout written by report.FormatForSummary:
// one "--- Order ID: N, Customer: X, Date: D, Total: T ---" header per
// order followed by a line of "product (qty: n)" entries.
package summarizer
