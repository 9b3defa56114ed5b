package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsireport/internal/slapi"
	"vsireport/internal/timeutil"
)

// memStore implements Store over a map with create/update semantics
// matching the document store.
type memStore struct {
	docs    map[string]Document
	creates int
	updates int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]Document)}
}

func (s *memStore) Get(_ context.Context, guestID string) (*Document, error) {
	doc, ok := s.docs[guestID]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *memStore) Create(_ context.Context, doc *Document) error {
	if _, ok := s.docs[doc.GuestID]; ok {
		return ErrExists
	}
	s.docs[doc.GuestID] = *doc
	s.creates++
	return nil
}

func (s *memStore) Update(_ context.Context, doc *Document) error {
	if _, ok := s.docs[doc.GuestID]; !ok {
		return ErrNotFound
	}
	s.docs[doc.GuestID] = *doc
	s.updates++
	return nil
}

func (s *memStore) Upsert(ctx context.Context, doc *Document) error {
	err := s.Create(ctx, doc)
	if errors.Is(err, ErrExists) {
		return s.Update(ctx, doc)
	}
	return err
}

type fakeInventory struct {
	guests []slapi.VirtualGuest
	err    error
}

func (f *fakeInventory) HourlyGuests(_ context.Context) ([]slapi.VirtualGuest, error) {
	return f.guests, f.err
}

func inFlightGuest() slapi.VirtualGuest {
	return slapi.VirtualGuest{
		ID:                       9000,
		Hostname:                 "vsi01",
		FullyQualifiedDomainName: "vsi01.example.com",
		ProvisionDate:            "",
		Datacenter:               &slapi.NamedEntity{Name: "dal10"},
		ServerRoom:               &slapi.NamedEntity{Name: "dal10.sr02"},
		PrimaryBackendIPAddress:  "10.0.0.5",
		NetworkVlans:             []slapi.NetworkVlan{{VlanNumber: 1234}, {VlanNumber: 99}},
		BackendRouters:           []slapi.BackendRouter{{Hostname: "bcr01a.dal10"}, {Hostname: "bcr02a.dal10"}},
		BlockDeviceTemplateGroup: &slapi.NamedEntity{Name: "centos8-template"},
		MaxCPU:                   2,
		MaxMemory:                4096,
		ActiveTransaction: &slapi.ActiveTransaction{
			CreateDate:        "2021-05-01T10:00:00-05:00",
			ElapsedSeconds:    150,
			TransactionStatus: &slapi.TransactionStatus{Name: "CLOUD_INSTALL"},
		},
	}
}

func TestRunSnapshotsOnlyInFlightGuests(t *testing.T) {
	provisioned := slapi.VirtualGuest{ID: 9001, ProvisionDate: "2021-05-01T09:00:00-05:00"}
	inventory := &fakeInventory{guests: []slapi.VirtualGuest{inFlightGuest(), provisioned}}
	store := newMemStore()

	now := time.Date(2021, 5, 1, 10, 12, 0, 0, timeutil.Central)
	rec := &Reconciler{API: inventory, Store: store, Now: func() time.Time { return now }}

	written, err := rec.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	doc, err := store.Get(context.Background(), "9000")
	require.NoError(t, err)
	assert.Equal(t, DocType, doc.DocType)
	assert.Equal(t, "vsi01", doc.Hostname)
	assert.Equal(t, "vsi01.example.com", doc.FQDN)
	assert.Equal(t, "centos8-template", doc.TemplateImage)
	assert.Equal(t, "dal10", doc.Datacenter)
	assert.Equal(t, "dal10.sr02", doc.ServerRoom)
	assert.Equal(t, "1234", doc.VLAN, "first VLAN entry wins")
	assert.Equal(t, "bcr01a.dal10", doc.Router, "first router entry wins")
	assert.Equal(t, "10.0.0.5", doc.BackendIP)
	assert.Equal(t, 2, doc.MaxCPU)
	assert.Equal(t, 4096, doc.MaxMemory)
	assert.Equal(t, "CLOUD_INSTALL", doc.TransactionStatus)
	assert.Equal(t, 2.5, doc.ElapsedMinutes)

	_, err = store.Get(context.Background(), "9001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunUpsertIsIdempotent(t *testing.T) {
	inventory := &fakeInventory{guests: []slapi.VirtualGuest{inFlightGuest()}}
	store := newMemStore()
	rec := &Reconciler{API: inventory, Store: store}

	_, err := rec.Run(context.Background())
	require.NoError(t, err)
	_, err = rec.Run(context.Background())
	require.NoError(t, err)

	// Second pass overwrites rather than duplicates.
	assert.Len(t, store.docs, 1)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, store.updates)
}

func TestRunGuestListFailureIsFatal(t *testing.T) {
	inventory := &fakeInventory{err: errors.New("api down")}
	rec := &Reconciler{API: inventory, Store: newMemStore()}

	_, err := rec.Run(context.Background())
	assert.Error(t, err)
}

func TestDocumentForPermissiveDefaults(t *testing.T) {
	doc := DocumentFor(slapi.VirtualGuest{ID: 42, Hostname: "bare"}, time.Now())

	assert.Equal(t, "42", doc.GuestID)
	assert.Empty(t, doc.TemplateImage)
	assert.Empty(t, doc.Datacenter)
	assert.Empty(t, doc.ServerRoom)
	assert.Empty(t, doc.VLAN)
	assert.Empty(t, doc.Router)
	assert.Empty(t, doc.BackendIP)
	assert.Empty(t, doc.TransactionStatus)
}

func TestDocumentForInFlightDelta(t *testing.T) {
	started := time.Date(2021, 5, 1, 10, 0, 0, 0, timeutil.Central)
	now := started.Add(12 * time.Minute)

	doc := DocumentFor(inFlightGuest(), now)

	assert.Equal(t, 12.0, doc.InFlightMinutes)
	assert.Equal(t, started.Format(time.RFC3339), doc.TransactionStarted)
}
