package notify_test

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks Notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"familyhub/internal/notify"
	"familyhub/internal/notify/mocks"
	id "familyhub/pkg/domain"
)

type countingRecorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (r *countingRecorder) IncrementNotification(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = map[string]int{}
	}
	r.results[result]++
}

func (r *countingRecorder) count(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[result]
}

type DispatcherSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockNotifier *mocks.MockNotifier
	recorder     *countingRecorder
	dispatcher   *notify.Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockNotifier = mocks.NewMockNotifier(s.ctrl)
	s.recorder = &countingRecorder{}
	s.dispatcher = notify.NewDispatcher(s.mockNotifier,
		notify.WithDeduper(notify.NewMemoryDeduper(time.Hour)),
		notify.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		notify.WithResultRecorder(s.recorder),
		notify.WithSendTimeout(time.Second),
	)
}

func (s *DispatcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DispatcherSuite) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.dispatcher.Shutdown(ctx))
}

func email() notify.InvitationEmail {
	return notify.InvitationEmail{
		InvitationID: id.NewInvitationID(),
		To:           "b@x.com",
		FamilyName:   "Smiths",
		Role:         "member",
		AcceptURL:    "https://familyhub.test/invite/tok",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func (s *DispatcherSuite) TestSendOutlivesRequestContext() {
	msg := email()
	s.mockNotifier.EXPECT().SendInvitation(gomock.Any(), msg).DoAndReturn(func(ctx context.Context, _ notify.InvitationEmail) error {
		s.NoError(ctx.Err(), "send context must not inherit request cancellation")
		_, hasDeadline := ctx.Deadline()
		s.True(hasDeadline)
		return nil
	})

	reqCtx, cancel := context.WithCancel(context.Background())
	s.dispatcher.Dispatch(reqCtx, msg)
	cancel()
	s.drain()

	s.Equal(1, s.recorder.count("sent"))
}

func (s *DispatcherSuite) TestDuplicateDispatchSendsOnce() {
	msg := email()
	s.mockNotifier.EXPECT().SendInvitation(gomock.Any(), msg).Return(nil).Times(1)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.dispatcher.Dispatch(context.Background(), msg)
		}()
	}
	wg.Wait()
	s.drain()

	s.Equal(1, s.recorder.count("sent"))
	s.Equal(9, s.recorder.count("duplicate"))
}

func (s *DispatcherSuite) TestFailureIsSwallowed() {
	s.mockNotifier.EXPECT().SendInvitation(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	s.dispatcher.Dispatch(context.Background(), email())
	s.drain()

	s.Equal(1, s.recorder.count("failed"))
}

func (s *DispatcherSuite) TestShutdownDropsLateDispatches() {
	s.drain()
	s.dispatcher.Dispatch(context.Background(), email())
	s.Equal(1, s.recorder.count("dropped"))
}

func (s *DispatcherSuite) TestShutdownHonoursDeadline() {
	release := make(chan struct{})
	s.mockNotifier.EXPECT().SendInvitation(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, notify.InvitationEmail) error {
		<-release
		return nil
	})
	s.dispatcher.Dispatch(context.Background(), email())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.dispatcher.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	s.drain()
}
