package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"vendbridge/internal/service"
)

const signatureHeader = "X-Razorpay-Signature"

// maxWebhookBody caps the raw payload read; gateway events are small.
const maxWebhookBody = 1 << 20

// WebhookHandler feeds raw deliveries to the reconciler. The body must be
// read as exact bytes: the signature covers the wire payload, not a
// re-serialization. A signature mismatch is the one case that must be
// rejected, so the gateway's retry and alerting fire.
func WebhookHandler(rec *service.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}

		ack, err := rec.Process(r.Context(), payload, r.Header.Get(signatureHeader))
		if err != nil {
			if errors.Is(err, service.ErrBadSignature) {
				// No detail: nothing about the payload is trusted.
				writeError(w, http.StatusBadRequest, "invalid signature")
				return
			}
			slog.Error("webhook processing failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ack)
	}
}
