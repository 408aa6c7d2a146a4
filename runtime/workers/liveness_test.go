package workers

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"telechat/domain"
	"telechat/mocks"
	"telechat/moderation"
	"telechat/runtime"
)

type stubTransport struct {
	mu     sync.Mutex
	closed bool
	pings  int
}

func (s *stubTransport) Send(frame domain.OutboundFrame) error { return nil }

func (s *stubTransport) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pings++
	return nil
}

func (s *stubTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubTransport) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *stubTransport) Pings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pings
}

type livenessFixture struct {
	registry   *runtime.Registry
	membership *runtime.Membership
	router     *runtime.Router
	monitor    *LivenessMonitor
	now        time.Time
	advance    func(time.Duration)
}

func newLivenessFixture(t *testing.T, timeout time.Duration) *livenessFixture {
	t.Helper()
	log := slog.Default()
	ctrl := gomock.NewController(t)

	fixture := &livenessFixture{now: time.Now()}
	clock := func() time.Time { return fixture.now }
	fixture.advance = func(d time.Duration) { fixture.now = fixture.now.Add(d) }

	moderator, err := moderation.NewModerator([]string{"badword"}, '*')
	require.NoError(t, err)

	fixture.registry = runtime.NewRegistryWithClock(clock)
	fixture.membership = runtime.NewMembership()
	limiter := runtime.NewRateLimiterWithClock(100, time.Minute, clock)
	consultations := mocks.NewMockConsultationStore(ctrl)
	status := runtime.NewStatusBroadcaster(log, fixture.registry, consultations)
	fixture.router = runtime.NewRouter(log, fixture.registry, fixture.membership,
		limiter, mocks.NewMockMessageStore(ctrl), consultations, status, moderator, 1024)

	fixture.monitor = NewLivenessMonitor(log, fixture.registry, fixture.router,
		time.Second, timeout).WithClock(clock)
	return fixture
}

func TestLivenessMonitor_Evicts_Silent_Connection(t *testing.T) {
	req := require.New(t)
	fixture := newLivenessFixture(t, time.Minute)
	transport := &stubTransport{}
	fixture.router.Connect("alice", domain.RolePatient, transport)
	fixture.membership.Join("alice", "consult-1")

	// When the connection stays silent past the timeout
	fixture.advance(2 * time.Minute)
	fixture.monitor.Sweep()

	// Then it is closed and fully cleaned up
	req.True(transport.Closed())
	req.Zero(fixture.registry.Len())
	req.False(fixture.membership.IsMember("alice", "consult-1"))
}

func TestLivenessMonitor_Pings_Responsive_Connection(t *testing.T) {
	req := require.New(t)
	fixture := newLivenessFixture(t, time.Minute)
	transport := &stubTransport{}
	fixture.router.Connect("alice", domain.RolePatient, transport)

	// When the connection is within the timeout
	fixture.advance(30 * time.Second)
	fixture.monitor.Sweep()

	// Then it only gets probed
	req.Equal(1, transport.Pings())
	req.False(transport.Closed())
	req.Equal(1, fixture.registry.Len())
}

func TestLivenessMonitor_Eviction_Spares_A_Replacement(t *testing.T) {
	req := require.New(t)
	fixture := newLivenessFixture(t, time.Minute)
	old := &stubTransport{}
	fixture.router.Connect("alice", domain.RolePatient, old)

	// The user reconnects before the sweep runs
	fixture.advance(2 * time.Minute)
	replacement := &stubTransport{}
	fixture.router.Connect("alice", domain.RolePatient, replacement)

	fixture.monitor.Sweep()

	// The fresh connection survives the sweep
	req.Equal(1, fixture.registry.Len())
	req.False(replacement.Closed())
	conn, ok := fixture.registry.GetActive("alice")
	req.True(ok)
	req.Equal(uint64(2), conn.Generation)
}

func TestLivenessMonitor_Heartbeat_Postpones_Eviction(t *testing.T) {
	req := require.New(t)
	fixture := newLivenessFixture(t, time.Minute)
	transport := &stubTransport{}
	fixture.router.Connect("alice", domain.RolePatient, transport)

	// A heartbeat arrives halfway through the window
	fixture.advance(45 * time.Second)
	fixture.router.Touch("alice")

	// The original deadline passes, but the refreshed one has not
	fixture.advance(30 * time.Second)
	fixture.monitor.Sweep()

	req.False(transport.Closed())
	req.Equal(1, fixture.registry.Len())
}
