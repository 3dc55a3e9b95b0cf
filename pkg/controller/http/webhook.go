package http

import (
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
	"github.com/m-mizutani/pullhook/pkg/infra/metrics"
)

// WebhookHandler handles webhook notifications
type WebhookHandler struct {
	webhookUC    interfaces.WebhookUseCase
	maxBodyBytes int64
	recorder     *metrics.Recorder
}

// HandlerOption is a functional option for WebhookHandler
type HandlerOption func(*WebhookHandler)

// WithHandlerMaxBodyBytes limits the request body size
func WithHandlerMaxBodyBytes(n int64) HandlerOption {
	return func(h *WebhookHandler) {
		h.maxBodyBytes = n
	}
}

// WithHandlerMetrics counts responses by status code
func WithHandlerMetrics(r *metrics.Recorder) HandlerOption {
	return func(h *WebhookHandler) {
		h.recorder = r
	}
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookUC interfaces.WebhookUseCase, opts ...HandlerOption) *WebhookHandler {
	h := &WebhookHandler{
		webhookUC:    webhookUC,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Read payload; the signature covers these exact bytes
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	defer r.Body.Close()
	if err != nil {
		msg := "failed to read request body"
		if isBodyTooLarge(err) {
			msg = "request body too large"
		}
		h.respondError(w, r, goerr.Wrap(err, msg, goerr.T(types.ErrTagPayload)))
		return
	}

	req := &model.WebhookRequest{
		EventType:  r.Header.Get(types.HeaderEvent),
		DeliveryID: r.Header.Get(types.HeaderDelivery),
		Signature:  r.Header.Get(types.HeaderSignature),
		Body:       body,
		ReceivedAt: time.Now(),
	}

	outcome, err := h.webhookUC.HandleWebhook(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctxlog.From(ctx).Debug("Webhook handled",
		"delivery_id", req.DeliveryID,
		"status", outcome.Status,
		"action", outcome.Decision.Action.String(),
	)
	h.respond(w, r, http.StatusOK, &outcome.Response)
}

func (h *WebhookHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorResponse(r.Context(), err)
	h.respond(w, r, status, resp)
}

func (h *WebhookHandler) respond(w http.ResponseWriter, r *http.Request, status int, resp *model.Response) {
	if h.recorder != nil {
		h.recorder.ObserveRequest(status)
	}
	writeJSON(r.Context(), w, status, resp)
}
