package relay

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/relaymesh/relayd/config"
	"github.com/relaymesh/relayd/internal/api"
	"github.com/relaymesh/relayd/internal/forwarder"
	"github.com/relaymesh/relayd/internal/metrics"
	"github.com/relaymesh/relayd/internal/transport"
	"github.com/relaymesh/relayd/internal/transport/zmq"
	"github.com/relaymesh/relayd/internal/util"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// Relay is one forwarding process: two bound endpoints and the loop that moves messages between them.
//
// A Relay is created by NewRequestReplyBroker, NewPublicationProxy or NewReplicationProxy, started
// with Run, and shut down with Close.
type Relay struct {
	spec           componentSpec
	binder         transport.Binder
	first          boundEndpoint
	second         boundEndpoint
	forwarder      *forwarder.Forwarder
	metricsManager *metrics.Manager
	handler        http.Handler
	settleDelay    time.Duration
	startTime      time.Time
	cancelRun      context.CancelFunc
	runDone        chan struct{}
	closed         bool
	lock           sync.Mutex
	loggers        ldlog.Loggers
}

type boundEndpoint struct {
	endpointSpec
	address  string
	endpoint transport.Endpoint
}

// NewRequestReplyBroker creates the request/reply broker: a ROUTER frontend for clients and a DEALER
// backend for servers.
//
// If binder is nil, ZeroMQ sockets are created with the socket options from the configuration.
func NewRequestReplyBroker(c config.Config, loggers ldlog.Loggers, binder transport.Binder) (*Relay, error) {
	return newRelay(brokerSpec(), c, loggers, binder)
}

// NewPublicationProxy creates the publication proxy: an XSUB ingress where servers publish posts and
// an XPUB egress where clients subscribe.
//
// If binder is nil, ZeroMQ sockets are created with the socket options from the configuration.
func NewPublicationProxy(c config.Config, loggers ldlog.Loggers, binder transport.Binder) (*Relay, error) {
	return newRelay(publicationSpec(), c, loggers, binder)
}

// NewReplicationProxy creates the replication proxy, which has the same shape as the publication
// proxy but is used by servers to broadcast replication messages to each other.
//
// If binder is nil, ZeroMQ sockets are created with the socket options from the configuration.
func NewReplicationProxy(c config.Config, loggers ldlog.Loggers, binder transport.Binder) (*Relay, error) {
	return newRelay(replicationSpec(), c, loggers, binder)
}

func newRelay(spec componentSpec, c config.Config, loggers ldlog.Loggers, binder transport.Binder) (*Relay, error) {
	var thingsToCleanUp util.CleanupTasks // keeps track of partially constructed things in case we exit early
	defer thingsToCleanUp.Run()

	if err := config.ValidateConfig(&c); err != nil { // in case a not-yet-validated Config was passed in
		return nil, err
	}
	firstPort, secondPort := spec.ports(c)
	if err := config.ValidateComponentPorts(spec.section, firstPort, secondPort); err != nil {
		return nil, err
	}

	if c.Main.LogLevel.IsDefined() {
		loggers.SetMinLevel(c.Main.LogLevel.GetOrElse(ldlog.Info))
	}
	loggers.SetPrefix("[" + spec.name + "]")
	for _, warning := range config.Warnings(c) {
		loggers.Warn(warning)
	}

	if binder == nil {
		zmqBinder, err := zmq.NewBinder(zmq.SocketOptions{
			Linger:     c.Main.Linger.GetOrElse(config.DefaultLinger),
			SendHWM:    c.Main.SendHWM.GetOrElse(0),
			ReceiveHWM: c.Main.ReceiveHWM.GetOrElse(0),
		})
		if err != nil {
			return nil, errCreateTransportFailed(err)
		}
		binder = zmqBinder
	}
	thingsToCleanUp.AddCloser(binder)

	metricsManager, err := metrics.NewManager(c.MetricsConfig, spec.name, loggers)
	if err != nil {
		return nil, errNewMetricsManagerFailed(err)
	}
	thingsToCleanUp.AddFunc(metricsManager.Close)

	first, err := bind(binder, spec.first, transport.TCPAddress(c.Main.BindHost, firstPort), loggers)
	if err != nil {
		return nil, err
	}
	thingsToCleanUp.AddCloser(first.endpoint)
	second, err := bind(binder, spec.second, transport.TCPAddress(c.Main.BindHost, secondPort), loggers)
	if err != nil {
		return nil, err
	}
	thingsToCleanUp.AddCloser(second.endpoint)

	poller, err := binder.NewPoller(first.endpoint, second.endpoint)
	if err != nil {
		return nil, errNewPollerFailed(err)
	}

	forwardName, backwardName := spec.routeNames()
	forwardInspector, backwardInspector := spec.inspectors(loggers)
	fwd := forwarder.New(first.endpoint, second.endpoint, poller, forwarder.Options{
		PollTimeout: c.Main.PollTimeout.GetOrElse(config.DefaultPollTimeout),
		MaxPerPoll:  c.Main.MaxMessagesPerPoll.GetOrElse(config.DefaultMaxMessagesPerPoll),
		Forward: forwarder.Route{
			Name:            forwardName,
			Inspect:         forwardInspector,
			DropWhenBlocked: spec.dropWhenBlocked,
		},
		Backward: forwarder.Route{
			Name:            backwardName,
			Inspect:         backwardInspector,
			DropWhenBlocked: spec.dropWhenBlocked,
		},
		Observer: metricsManager,
	}, loggers)

	r := &Relay{
		spec:           spec,
		binder:         binder,
		first:          first,
		second:         second,
		forwarder:      fwd,
		metricsManager: metricsManager,
		startTime:      time.Now(),
		loggers:        loggers,
	}
	if spec.settle {
		r.settleDelay = c.Main.SettleDelay.GetOrElse(config.DefaultSettleDelay)
	}
	r.handler = r.makeRouter()

	for _, line := range spec.banner(firstPort, secondPort) {
		loggers.Info(line)
	}

	thingsToCleanUp.Clear() // we succeeded, don't close anything
	return r, nil
}

func bind(binder transport.Binder, spec endpointSpec, address string, loggers ldlog.Loggers) (boundEndpoint, error) {
	endpoint, err := binder.Bind(spec.kind, address)
	if err != nil {
		return boundEndpoint{}, errBindFailed(spec.role, err)
	}
	loggers.Infof("%s endpoint bound to %s (%s)", spec.kind, address, spec.role)
	return boundEndpoint{endpointSpec: spec, address: address, endpoint: endpoint}, nil
}

// Component returns the relay's component name, such as "broker".
func (r *Relay) Component() string {
	return r.spec.name
}

// Stats returns the relay's message counters. They can be read while Run is active.
func (r *Relay) Stats() *forwarder.Stats {
	return r.forwarder.Stats()
}

// StatusHandler returns the HTTP handler for the relay's status endpoint.
func (r *Relay) StatusHandler() http.Handler {
	return r.handler
}

// Run waits for the settle delay, if any, and then forwards messages until the context is cancelled
// or an endpoint fails. It returns nil if it stopped because of cancellation or Close.
func (r *Relay) Run(ctx context.Context) error {
	r.lock.Lock()
	if r.closed {
		r.lock.Unlock()
		return errAlreadyClosed
	}
	if r.runDone != nil {
		r.lock.Unlock()
		return errAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancelRun = cancel
	r.runDone = done
	r.lock.Unlock()

	defer func() {
		cancel()
		r.lock.Lock()
		r.cancelRun = nil
		r.runDone = nil
		r.lock.Unlock()
		close(done)
	}()

	if r.settleDelay > 0 {
		r.loggers.Infof("Waiting %s for peers to connect", r.settleDelay)
		timer := time.NewTimer(r.settleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}

	r.loggers.Infof("Forwarding messages between %s and %s", r.first.address, r.second.address)
	return r.forwarder.Run(ctx)
}

func (r *Relay) isRunning() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.runDone != nil
}

// Close stops the forwarding loop if it is running, then releases the endpoints, the transport and
// the metrics exporters. It is safe to call more than once.
func (r *Relay) Close() error {
	r.lock.Lock()
	if r.closed {
		r.lock.Unlock()
		return nil
	}
	r.closed = true
	cancel, done := r.cancelRun, r.runDone
	r.lock.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	for _, e := range []boundEndpoint{r.first, r.second} {
		if err := e.endpoint.Close(); err != nil {
			r.loggers.Warnf("Unexpected error when closing %s endpoint: %s", e.role, err)
		}
	}
	if err := r.binder.Close(); err != nil {
		r.loggers.Warnf("Unexpected error when closing transport: %s", err)
	}
	r.metricsManager.Close()

	r.loggers.Infof("Cleanup completed for %s", r.spec.description)
	return nil
}

func (r *Relay) endpointStatusReps() []api.EndpointStatusRep {
	reps := make([]api.EndpointStatusRep, 0, 2)
	for _, e := range []boundEndpoint{r.first, r.second} {
		reps = append(reps, api.EndpointStatusRep{Role: e.role, Kind: e.kind.String(), Address: e.address})
	}
	return reps
}
