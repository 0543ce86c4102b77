package registry

import (
	"context"
	"sort"
	"time"

	"github.com/lcalzada-xor/wreveal/internal/core/domain"
)

// AssociationIndex is the client→AP relation keyed by client MAC.
type AssociationIndex struct {
	capacity int
	entries  map[domain.MAC]*domain.Association
}

// NewAssociationIndex creates an index holding at most capacity entries.
func NewAssociationIndex(capacity int) *AssociationIndex {
	if capacity <= 0 {
		capacity = DefaultMaxClients
	}
	return &AssociationIndex{capacity: capacity, entries: make(map[domain.MAC]*domain.Association)}
}

func (x *AssociationIndex) Len() int { return len(x.entries) }

// Get returns the association of client.
func (x *AssociationIndex) Get(client domain.MAC) (*domain.Association, bool) {
	a, ok := x.entries[client]
	return a, ok
}

// ClientsOf returns clients associated with bssid, oldest association first.
func (x *AssociationIndex) ClientsOf(bssid domain.MAC) []domain.MAC {
	var list []*domain.Association
	for _, a := range x.entries {
		if a.BSSID == bssid {
			list = append(list, a)
		}
	}
	sortAssociations(list)
	out := make([]domain.MAC, len(list))
	for i, a := range list {
		out[i] = a.Client
	}
	return out
}

// Snapshot returns copies of every entry, oldest association first.
func (x *AssociationIndex) Snapshot() []domain.Association {
	list := make([]*domain.Association, 0, len(x.entries))
	for _, a := range x.entries {
		list = append(list, a)
	}
	sortAssociations(list)
	out := make([]domain.Association, len(list))
	for i, a := range list {
		out[i] = *a
	}
	return out
}

func (x *AssociationIndex) oldest() (domain.MAC, bool) {
	var found *domain.Association
	for _, a := range x.entries {
		if found == nil || a.LastAssociated.Before(found.LastAssociated) {
			found = a
		}
	}
	if found == nil {
		return domain.MAC{}, false
	}
	return found.Client, true
}

func sortAssociations(list []*domain.Association) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].FirstAssociated.Equal(list[j].FirstAssociated) {
			return list[i].FirstAssociated.Before(list[j].FirstAssociated)
		}
		return list[i].Client.String() < list[j].Client.String()
	})
}

// Tracker keeps the AP associated-client sets, Client.APBSSID and the
// AssociationIndex consistent. Link and Unlink are the only paths that
// change the relation; eviction from either registry goes through them too.
type Tracker struct {
	APs     *APRegistry
	Clients *ClientRegistry
	Index   *AssociationIndex
}

// NewTracker wires the three stores together.
func NewTracker(aps *APRegistry, clients *ClientRegistry, index *AssociationIndex) *Tracker {
	return &Tracker{APs: aps, Clients: clients, Index: index}
}

// AccessPoint returns the record for bssid, creating it when missing. A
// new record picks up clients that associated before the AP was seen.
func (t *Tracker) AccessPoint(bssid domain.MAC, now time.Time) (*domain.AccessPoint, bool) {
	ap, created, evicted := t.APs.FindOrCreate(bssid, now)
	if evicted != nil {
		for _, c := range evicted.AssociatedClients {
			t.dropRelation(c)
		}
	}
	if created {
		for _, c := range t.Index.ClientsOf(bssid) {
			t.addToAP(ap, c)
		}
	}
	return ap, created
}

// Client returns the record for mac, creating it when missing.
func (t *Tracker) Client(ctx context.Context, mac domain.MAC, now time.Time) (*domain.Client, bool) {
	c, created, evicted := t.Clients.FindOrCreate(ctx, mac, now)
	if evicted != nil {
		t.dropRelation(evicted.MAC)
	}
	return c, created
}

// Link records that client is associated with bssid. A client linked to a
// different AP is moved. The client record must exist.
func (t *Tracker) Link(client, bssid domain.MAC, now time.Time) bool {
	c, ok := t.Clients.Get(client)
	if !ok || bssid.IsUndirected() {
		return false
	}

	if a, ok := t.Index.Get(client); ok {
		if a.BSSID == bssid {
			a.LastAssociated = now
			a.AssociationCount++
			if ap, ok := t.APs.Get(bssid); ok && !ap.HasClient(client) {
				t.addToAP(ap, client)
			}
			return true
		}
		t.removeFromAP(a.BSSID, client)
	} else if t.Index.Len() >= t.Index.capacity {
		if victim, ok := t.Index.oldest(); ok {
			t.dropRelation(victim)
		}
	}

	b := bssid
	c.APBSSID = &b
	t.Index.entries[client] = &domain.Association{
		Client:           client,
		BSSID:            bssid,
		FirstAssociated:  now,
		LastAssociated:   now,
		AssociationCount: 1,
	}
	if ap, ok := t.APs.Get(bssid); ok {
		t.addToAP(ap, client)
	}
	return true
}

// Confirm is Link for passive evidence such as data frames: an existing
// association with the same AP is refreshed but not counted again.
func (t *Tracker) Confirm(client, bssid domain.MAC, now time.Time) bool {
	if a, ok := t.Index.Get(client); ok && a.BSSID == bssid {
		if now.After(a.LastAssociated) {
			a.LastAssociated = now
		}
		return true
	}
	return t.Link(client, bssid, now)
}

// Unlink removes the association of client with bssid. An undirected bssid
// matches whatever AP the client is linked to. The client record is kept.
func (t *Tracker) Unlink(client, bssid domain.MAC) bool {
	a, ok := t.Index.Get(client)
	if !ok {
		return false
	}
	if !bssid.IsUndirected() && a.BSSID != bssid {
		return false
	}
	t.dropRelation(client)
	return true
}

// UnlinkAll removes every client of bssid, as a broadcast deauthentication
// does.
func (t *Tracker) UnlinkAll(bssid domain.MAC) int {
	n := 0
	for _, c := range t.Index.ClientsOf(bssid) {
		t.dropRelation(c)
		n++
	}
	return n
}

// RemoveClient deletes a client together with its association.
func (t *Tracker) RemoveClient(mac domain.MAC) {
	t.dropRelation(mac)
	t.Clients.Remove(mac)
}

// RemoveStale drops clients last seen before cutoff and associations last
// refreshed before it. It returns how many of each were removed.
func (t *Tracker) RemoveStale(cutoff time.Time) (clients, associations int) {
	for _, mac := range t.Clients.Stale(cutoff) {
		t.RemoveClient(mac)
		clients++
	}
	for _, a := range t.Index.Snapshot() {
		if a.LastAssociated.Before(cutoff) {
			t.dropRelation(a.Client)
			associations++
		}
	}
	t.Clients.ExpireProbing(cutoff)
	return clients, associations
}

// Clear empties all three stores.
func (t *Tracker) Clear() {
	t.APs.Clear()
	t.Clients.Clear()
	t.Index.entries = make(map[domain.MAC]*domain.Association)
}

// dropRelation removes every trace of the association of client.
func (t *Tracker) dropRelation(client domain.MAC) {
	if a, ok := t.Index.Get(client); ok {
		t.removeFromAP(a.BSSID, client)
		delete(t.Index.entries, client)
	}
	if c, ok := t.Clients.Get(client); ok {
		c.APBSSID = nil
	}
}

// addToAP appends client to the AP set. When the set is full the oldest
// member loses its association entirely.
func (t *Tracker) addToAP(ap *domain.AccessPoint, client domain.MAC) {
	if ap.HasClient(client) {
		return
	}
	ap.AssociatedClients = append(ap.AssociatedClients, client)
	for len(ap.AssociatedClients) > domain.MaxAssociatedClients {
		oldest := ap.AssociatedClients[0]
		ap.AssociatedClients = append(ap.AssociatedClients[:0], ap.AssociatedClients[1:]...)
		if a, ok := t.Index.Get(oldest); ok && a.BSSID == ap.BSSID {
			delete(t.Index.entries, oldest)
			if c, ok := t.Clients.Get(oldest); ok {
				c.APBSSID = nil
			}
		}
	}
}

func (t *Tracker) removeFromAP(bssid, client domain.MAC) {
	ap, ok := t.APs.Get(bssid)
	if !ok {
		return
	}
	for i, m := range ap.AssociatedClients {
		if m == client {
			ap.AssociatedClients = append(ap.AssociatedClients[:i], ap.AssociatedClients[i+1:]...)
			return
		}
	}
}
