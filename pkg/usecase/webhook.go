package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
	"github.com/m-mizutani/pullhook/pkg/utils/async"
)

// WebhookConfig is the static configuration of the webhook use case
type WebhookConfig struct {
	Secret     string `masq:"secret"`
	Insecure   bool
	ProjectDir string
	Branches   []string
}

// DefaultBranches is used when no trigger branch is configured
var DefaultBranches = []string{"main"}

type webhookUseCase struct {
	cfg      WebhookConfig
	executor interfaces.SyncExecutor
	notifier interfaces.Notifier
	recorder interfaces.SyncRecorder
}

// WebhookOption is a functional option for the webhook use case
type WebhookOption func(*webhookUseCase)

// WithNotifier sets a notifier called after every sync run
func WithNotifier(n interfaces.Notifier) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.notifier = n
	}
}

// WithSyncRecorder sets a metrics recorder
func WithSyncRecorder(r interfaces.SyncRecorder) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.recorder = r
	}
}

// NewWebhook creates a new instance of WebhookUseCase.
// An empty secret is refused unless cfg.Insecure is set.
func NewWebhook(cfg WebhookConfig, executor interfaces.SyncExecutor, opts ...WebhookOption) (*webhookUseCase, error) {
	if cfg.Secret == "" && !cfg.Insecure {
		return nil, goerr.New("webhook secret is required unless insecure mode is enabled",
			goerr.T(types.ErrTagConfiguration))
	}
	if cfg.ProjectDir == "" {
		return nil, goerr.New("project directory is required", goerr.T(types.ErrTagConfiguration))
	}
	if executor == nil {
		return nil, goerr.New("sync executor is required")
	}
	if len(cfg.Branches) == 0 {
		cfg.Branches = DefaultBranches
	}

	uc := &webhookUseCase{
		cfg:      cfg,
		executor: executor,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

// HandleWebhook runs verification, parsing, dispatch and sync for one request
func (uc *webhookUseCase) HandleWebhook(ctx context.Context, req *model.WebhookRequest) (*model.Outcome, error) {
	logger := ctxlog.From(ctx).With("delivery_id", req.DeliveryID, "event_type", req.EventType)
	ctx = ctxlog.With(ctx, logger)

	switch VerifySignature(uc.cfg.Secret, req.Body, req.Signature) {
	case VerificationSkipped:
		logger.Debug("Signature verification skipped in insecure mode")
	case VerificationInvalid:
		msg := "invalid signature"
		if req.Signature == "" {
			msg = "missing signature"
		}
		return nil, goerr.New(msg,
			goerr.T(types.ErrTagAuthentication),
			goerr.V("delivery_id", req.DeliveryID),
		)
	}

	payload, err := ParseEvent(req.EventType, req.DeliveryID, req.Body)
	if err != nil {
		return nil, err
	}

	logger.Info("Webhook event received",
		"repository", payload.Repository,
		"ref", payload.Ref,
		"branch", payload.Branch,
		"commits", payload.CommitCount,
	)

	decision := Decide(payload.EventType, payload.Branch, uc.cfg.Branches)
	if uc.recorder != nil {
		uc.recorder.ObserveDecision(decision.Action)
	}

	outcome := &model.Outcome{
		Decision: decision,
		Payload:  payload,
	}

	switch decision.Action {
	case model.DispatchIgnore:
		if decision.Reason == model.ReasonNoAction {
			outcome.Response = model.Response{Status: model.StatusReceived, Message: decision.Reason}
		} else {
			outcome.Response = model.Response{
				Status:  model.StatusIgnored,
				Message: fmt.Sprintf("%s: %s", decision.Reason, decision.Branch),
			}
		}
		logger.Info("No sync for event", "reason", decision.Reason, "branch", decision.Branch)
		return outcome, nil

	case model.DispatchError:
		return nil, goerr.New("invalid payload: "+decision.Reason,
			goerr.T(types.ErrTagPayload),
			goerr.V("ref", payload.Ref),
		)
	}

	result, err := uc.sync(ctx, payload, decision.Branch)
	if err != nil {
		return nil, err
	}
	outcome.Result = result
	outcome.Response = model.Response{
		Status:  model.StatusSuccess,
		Message: fmt.Sprintf("branch %s synchronized", decision.Branch),
	}
	return outcome, nil
}

// sync runs the executor on a context that survives client disconnects and
// turns process level failures into tagged errors.
func (uc *webhookUseCase) sync(ctx context.Context, payload *model.EventPayload, branch string) (*model.SyncResult, error) {
	logger := ctxlog.From(ctx)
	ctx = async.Detach(ctx)

	logger.Info("Starting sync", "dir", uc.cfg.ProjectDir, "branch", branch)

	result, err := uc.executor.Sync(ctx, uc.cfg.ProjectDir, branch)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sync repository",
			goerr.V("dir", uc.cfg.ProjectDir),
			goerr.V("branch", branch),
		)
	}

	if uc.recorder != nil {
		uc.recorder.ObserveSync(result)
	}
	if uc.notifier != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.NotifySync(ctx, payload, result)
		})
	}

	switch result.Status {
	case model.SyncSucceeded:
		logger.Info("Sync completed",
			"run_id", result.RunID,
			"branch", branch,
			"duration", result.Duration,
			"before", result.Before,
			"after", result.After,
			"changed", result.Changed(),
			"stdout", strings.TrimSpace(result.Stdout),
		)
		return result, nil

	case model.SyncTimedOut:
		return nil, goerr.New(fmt.Sprintf("sync of branch %s timed out", branch),
			goerr.T(types.ErrTagTimeout),
			goerr.V("run_id", result.RunID),
			goerr.V("duration", result.Duration.String()),
		)

	default:
		detail := strings.TrimSpace(result.Stderr)
		if detail == "" {
			detail = fmt.Sprintf("exit status %d", result.ExitCode)
		}
		return nil, goerr.New("sync failed: "+detail,
			goerr.T(types.ErrTagExecution),
			goerr.V("run_id", result.RunID),
			goerr.V("exit_code", result.ExitCode),
			goerr.V("stdout", result.Stdout),
		)
	}
}
