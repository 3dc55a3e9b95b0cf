package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/domain/model"
	"github.com/m-mizutani/pullhook/pkg/domain/types"
	"github.com/m-mizutani/pullhook/pkg/usecase"
)

// MockSyncExecutor is a mock implementation of SyncExecutor
type MockSyncExecutor struct {
	syncFunc func(ctx context.Context, dir, branch string) (*model.SyncResult, error)

	mu    sync.Mutex
	calls []MockSyncCall
}

type MockSyncCall struct {
	Dir    string
	Branch string
	Ctx    context.Context
}

func (m *MockSyncExecutor) Sync(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockSyncCall{Dir: dir, Branch: branch, Ctx: ctx})
	m.mu.Unlock()

	if m.syncFunc != nil {
		return m.syncFunc(ctx, dir, branch)
	}
	return &model.SyncResult{Status: model.SyncSucceeded, Branch: branch, Dir: dir}, nil
}

// MockNotifier records notifications
type MockNotifier struct {
	done chan *model.SyncResult
}

func (m *MockNotifier) NotifySync(ctx context.Context, payload *model.EventPayload, result *model.SyncResult) error {
	m.done <- result
	return nil
}

// MockRecorder records metrics calls
type MockRecorder struct {
	mu        sync.Mutex
	decisions []model.DispatchAction
	syncs     []*model.SyncResult
}

func (m *MockRecorder) ObserveDecision(action model.DispatchAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, action)
}

func (m *MockRecorder) ObserveSync(result *model.SyncResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs = append(m.syncs, result)
}

const (
	testSecret = "test-secret"
	testDir    = "/srv/analytics"
)

func newRequest(eventType, body string) *model.WebhookRequest {
	return &model.WebhookRequest{
		EventType:  eventType,
		DeliveryID: "delivery-1",
		Signature:  usecase.Sign(testSecret, []byte(body)),
		Body:       []byte(body),
		ReceivedAt: time.Now(),
	}
}

func newUseCase(t *testing.T, exec *MockSyncExecutor, opts ...usecase.WebhookOption) interfaces.WebhookUseCase {
	t.Helper()
	uc, err := usecase.NewWebhook(usecase.WebhookConfig{
		Secret:     testSecret,
		ProjectDir: testDir,
		Branches:   []string{"main"},
	}, exec, opts...)
	gt.NoError(t, err)
	return uc
}

const pushMain = `{"ref":"refs/heads/main","repository":{"name":"analytics"},"commits":[{"id":"a"}]}`

func TestNewWebhook_Config(t *testing.T) {
	exec := &MockSyncExecutor{}

	t.Run("secret required without insecure mode", func(t *testing.T) {
		_, err := usecase.NewWebhook(usecase.WebhookConfig{ProjectDir: testDir}, exec)
		gt.Error(t, err)
		gt.Equal(t, types.KindOf(err), types.KindConfiguration)
	})

	t.Run("insecure mode allows empty secret", func(t *testing.T) {
		_, err := usecase.NewWebhook(usecase.WebhookConfig{ProjectDir: testDir, Insecure: true}, exec)
		gt.NoError(t, err)
	})

	t.Run("project dir required", func(t *testing.T) {
		_, err := usecase.NewWebhook(usecase.WebhookConfig{Secret: testSecret}, exec)
		gt.Error(t, err)
	})

	t.Run("executor required", func(t *testing.T) {
		_, err := usecase.NewWebhook(usecase.WebhookConfig{Secret: testSecret, ProjectDir: testDir}, nil)
		gt.Error(t, err)
	})
}

func TestWebhookUseCase_Sync(t *testing.T) {
	exec := &MockSyncExecutor{
		syncFunc: func(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
			return &model.SyncResult{Status: model.SyncSucceeded, Branch: branch, Dir: dir, Stdout: "Already up to date."}, nil
		},
	}
	recorder := &MockRecorder{}
	notifier := &MockNotifier{done: make(chan *model.SyncResult, 1)}
	uc := newUseCase(t, exec, usecase.WithSyncRecorder(recorder), usecase.WithNotifier(notifier))

	outcome, err := uc.HandleWebhook(context.Background(), newRequest("push", pushMain))
	gt.NoError(t, err)
	gt.Equal(t, outcome.Status, model.StatusSuccess)
	gt.Equal(t, outcome.Decision, model.SyncDecision("main"))
	gt.Equal(t, outcome.Result.Stdout, "Already up to date.")
	gt.Equal(t, outcome.Payload.CommitCount, 1)

	gt.Equal(t, len(exec.calls), 1)
	gt.Equal(t, exec.calls[0].Dir, testDir)
	gt.Equal(t, exec.calls[0].Branch, "main")

	gt.Equal(t, recorder.decisions, []model.DispatchAction{model.DispatchSync})
	gt.Equal(t, len(recorder.syncs), 1)

	select {
	case r := <-notifier.done:
		gt.Equal(t, r.Status, model.SyncSucceeded)
	case <-time.After(time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestWebhookUseCase_SyncSurvivesCancellation(t *testing.T) {
	exec := &MockSyncExecutor{}
	uc := newUseCase(t, exec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.HandleWebhook(ctx, newRequest("push", pushMain))
	gt.NoError(t, err)
	gt.Equal(t, len(exec.calls), 1)
	gt.NoError(t, exec.calls[0].Ctx.Err())
}

func TestWebhookUseCase_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func() *model.WebhookRequest
		syncFunc func(ctx context.Context, dir, branch string) (*model.SyncResult, error)
		wantKind types.ErrorKind
		wantMsg  string
		wantSync bool
	}{
		{
			name: "invalid signature",
			req: func() *model.WebhookRequest {
				r := newRequest("push", pushMain)
				r.Signature = "sha256=invalid"
				return r
			},
			wantKind: types.KindAuthentication,
			wantMsg:  "invalid signature",
		},
		{
			name: "missing signature",
			req: func() *model.WebhookRequest {
				r := newRequest("push", pushMain)
				r.Signature = ""
				return r
			},
			wantKind: types.KindAuthentication,
			wantMsg:  "missing signature",
		},
		{
			name: "malformed JSON",
			req: func() *model.WebhookRequest {
				return newRequest("push", `{"ref":`)
			},
			wantKind: types.KindPayload,
			wantMsg:  "invalid JSON payload",
		},
		{
			name: "missing repository name",
			req: func() *model.WebhookRequest {
				return newRequest("push", `{"ref":"refs/heads/main","repository":{},"commits":[]}`)
			},
			wantKind: types.KindPayload,
			wantMsg:  "missing repository.name",
		},
		{
			name: "empty branch",
			req: func() *model.WebhookRequest {
				return newRequest("push", `{"ref":"refs/heads/","repository":{"name":"analytics"},"commits":[]}`)
			},
			wantKind: types.KindPayload,
			wantMsg:  "empty branch",
		},
		{
			name: "missing directory",
			req: func() *model.WebhookRequest {
				return newRequest("push", pushMain)
			},
			syncFunc: func(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
				return nil, goerr.New("project directory not found", goerr.T(types.ErrTagConfiguration))
			},
			wantKind: types.KindConfiguration,
			wantMsg:  "project directory not found",
			wantSync: true,
		},
		{
			name: "non-zero exit",
			req: func() *model.WebhookRequest {
				return newRequest("push", pushMain)
			},
			syncFunc: func(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
				return &model.SyncResult{Status: model.SyncFailed, ExitCode: 1, Stderr: "conflict\n"}, nil
			},
			wantKind: types.KindExecution,
			wantMsg:  "sync failed: conflict",
			wantSync: true,
		},
		{
			name: "non-zero exit without stderr",
			req: func() *model.WebhookRequest {
				return newRequest("push", pushMain)
			},
			syncFunc: func(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
				return &model.SyncResult{Status: model.SyncFailed, ExitCode: 128}, nil
			},
			wantKind: types.KindExecution,
			wantMsg:  "exit status 128",
			wantSync: true,
		},
		{
			name: "timeout",
			req: func() *model.WebhookRequest {
				return newRequest("push", pushMain)
			},
			syncFunc: func(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
				return &model.SyncResult{Status: model.SyncTimedOut, ExitCode: -1}, nil
			},
			wantKind: types.KindTimeout,
			wantMsg:  "timed out",
			wantSync: true,
		},
		{
			name: "unexpected executor failure",
			req: func() *model.WebhookRequest {
				return newRequest("push", pushMain)
			},
			syncFunc: func(ctx context.Context, dir, branch string) (*model.SyncResult, error) {
				return nil, errors.New("disk on fire")
			},
			wantKind: types.KindUnexpected,
			wantMsg:  "disk on fire",
			wantSync: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &MockSyncExecutor{syncFunc: tt.syncFunc}
			uc := newUseCase(t, exec)

			outcome, err := uc.HandleWebhook(context.Background(), tt.req())
			gt.Error(t, err)
			gt.True(t, outcome == nil)
			gt.Equal(t, types.KindOf(err), tt.wantKind)
			gt.String(t, err.Error()).Contains(tt.wantMsg)
			gt.Equal(t, len(exec.calls) > 0, tt.wantSync)
		})
	}
}

func TestWebhookUseCase_Ignore(t *testing.T) {
	tests := []struct {
		name       string
		eventType  string
		body       string
		wantStatus string
		wantMsg    string
	}{
		{
			name:       "push to other branch",
			eventType:  "push",
			body:       `{"ref":"refs/heads/dev","repository":{"name":"analytics"},"commits":[]}`,
			wantStatus: model.StatusIgnored,
			wantMsg:    "branch not configured: dev",
		},
		{
			name:       "ping event",
			eventType:  "ping",
			body:       `{"zen":"Design for failure."}`,
			wantStatus: model.StatusReceived,
			wantMsg:    model.ReasonNoAction,
		},
		{
			name:       "issues event",
			eventType:  "issues",
			body:       `{"action":"opened"}`,
			wantStatus: model.StatusReceived,
			wantMsg:    model.ReasonNoAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &MockSyncExecutor{}
			uc := newUseCase(t, exec)

			outcome, err := uc.HandleWebhook(context.Background(), newRequest(tt.eventType, tt.body))
			gt.NoError(t, err)
			gt.Equal(t, outcome.Status, tt.wantStatus)
			gt.Equal(t, outcome.Message, tt.wantMsg)
			gt.True(t, outcome.Result == nil)
			gt.Equal(t, len(exec.calls), 0)
		})
	}
}

func TestWebhookUseCase_InsecureMode(t *testing.T) {
	exec := &MockSyncExecutor{}
	uc, err := usecase.NewWebhook(usecase.WebhookConfig{
		Insecure:   true,
		ProjectDir: testDir,
	}, exec)
	gt.NoError(t, err)

	// default trigger set is main, and no signature is needed
	outcome, err := uc.HandleWebhook(context.Background(), &model.WebhookRequest{
		EventType: "push",
		Body:      []byte(pushMain),
	})
	gt.NoError(t, err)
	gt.Equal(t, outcome.Status, model.StatusSuccess)
	gt.Equal(t, len(exec.calls), 1)
}
