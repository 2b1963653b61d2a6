package entity

// Fingerprint is the randomized browser identity presented for one page load.
// It is chosen once per request handling and never reused across runs.
type Fingerprint struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	ExtraHeaders   map[string]string
}
