// Package receiver helps webhook consumers authenticate deliveries from
// the dispatch engine.
//
// The middleware recomputes the HMAC-SHA256 signature of the request body
// and rejects requests whose X-Hookrelay-Key / X-Hookrelay-Signature
// headers do not check out, before the handler ever sees the payload.
//
//	r := chi.NewRouter()
//	r.Use(receiver.VerifySignature(func(key string) (string, bool) {
//	    secret, ok := secrets[key]
//	    return secret, ok
//	}))
//	r.Post("/webhooks", handleWebhook)
package receiver
