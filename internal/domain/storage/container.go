package storage

import (
	"context"
	"fmt"
	"time"

	"aquadash/internal/domain/notes"
	"aquadash/internal/domain/privacy"
	"aquadash/internal/domain/session"
	"aquadash/internal/domain/waterparks"
	"aquadash/internal/kv"
	"aquadash/internal/metrics"
	"aquadash/internal/remote"

	"go.uber.org/zap"
)

// Deps are the shared services every store is built on. Auth and Tickets are optional;
// without them login is demo-only and parks come from the generator alone.
type Deps struct {
	KV      kv.Store
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	Clock   func() time.Time

	Auth    *remote.AuthService
	Tickets *remote.TicketService

	RemoteRole      session.Role
	DemoAccounts    []session.DemoAccount
	BoxOfficeParkID string
	MockSeed        uint64
	NoteIDSalt      string
	ParkLatency     time.Duration
}

type Container struct {
	kv         kv.Store
	Session    *session.Store
	WaterParks *waterparks.Store
	Notes      *notes.Store
	Privacy    *privacy.Store
	Tickets    *remote.TicketService
}

func NewContainer(ctx context.Context, d Deps) (*Container, error) {
	if d.KV == nil {
		return nil, fmt.Errorf("storage container needs a kv store")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.DemoAccounts == nil {
		d.DemoAccounts = session.DefaultDemoAccounts
	}
	store := metrics.InstrumentKV(d.KV, d.Metrics)

	demo, err := session.NewDemoProvider(d.DemoAccounts)
	if err != nil {
		return nil, err
	}
	var providers []session.Provider
	var remoteSession session.RemoteSession
	if d.Auth != nil {
		rp := session.NewRemoteProvider(d.Auth, d.RemoteRole)
		rp.WaterParkID = d.BoxOfficeParkID
		rp.WaterParkName, _ = waterparks.ParkName(d.BoxOfficeParkID)
		providers = append(providers, rp)
		remoteSession = d.Auth
	}
	providers = append(providers, demo)

	sess, err := session.NewStore(ctx, session.Options{
		KV:        store,
		Logger:    d.Logger.Named("session"),
		Metrics:   d.Metrics,
		Remote:    remoteSession,
		Providers: providers,
	})
	if err != nil {
		return nil, err
	}

	gen := waterparks.MockSource{Seed: d.MockSeed}
	var source waterparks.Source = gen
	if d.Tickets != nil {
		source = &waterparks.RemoteSource{
			Base:    gen,
			Tickets: d.Tickets,
			ParkID:  d.BoxOfficeParkID,
			Logger:  d.Logger.Named("waterparks"),
		}
	}
	parks := waterparks.NewStore(waterparks.Options{
		Source:    source,
		Generator: gen,
		Clock:     d.Clock,
		Latency:   d.ParkLatency,
	})
	if err := parks.FetchWaterParks(ctx); err != nil {
		return nil, err
	}

	ns, err := notes.NewStore(ctx, notes.Options{
		KV:     store,
		Clock:  d.Clock,
		Seed:   d.MockSeed,
		IDSalt: d.NoteIDSalt,
	})
	if err != nil {
		return nil, err
	}

	priv, err := privacy.NewStore(ctx, privacy.Options{
		KV:      store,
		Logger:  d.Logger.Named("privacy"),
		Metrics: d.Metrics,
		Clock:   d.Clock,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		kv:         d.KV,
		Session:    sess,
		WaterParks: parks,
		Notes:      ns,
		Privacy:    priv,
		Tickets:    d.Tickets,
	}, nil
}

// VisibleParks returns the parks the signed-in user may see.
func (c *Container) VisibleParks() []waterparks.WaterPark {
	return c.WaterParks.Visible(c.Session.CanAccessPark)
}

// DeleteUserData erases the privacy record and the persisted session, then signs the
// session out in memory.
func (c *Container) DeleteUserData(ctx context.Context) error {
	err := c.Privacy.DeleteUserData(ctx)
	c.Session.Forget()
	return err
}

// Close releases the underlying kv store.
func (c *Container) Close() error {
	return c.kv.Close()
}
