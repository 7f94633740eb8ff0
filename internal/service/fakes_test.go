package service

import (
	"context"
	"time"

	"github.com/tablebook/cafe-reservation/internal/domain"
	"github.com/tablebook/cafe-reservation/internal/model"
	"github.com/tablebook/cafe-reservation/internal/outbox"
	"github.com/tablebook/cafe-reservation/internal/repository"
)

// In-memory fakes for the store interfaces.  They implement just enough
// behavior for the orchestration tests; persistence details are covered
// by the repository layer.

type fakeOutbox struct {
	sent []outbox.Notification
}

func (f *fakeOutbox) Notify(_ context.Context, n outbox.Notification) {
	f.sent = append(f.sent, n)
}

type fakeUsers struct {
	users  map[uint64]*model.User
	nextID uint64
}

func newFakeUsers(us ...*model.User) *fakeUsers {
	f := &fakeUsers{users: map[uint64]*model.User{}, nextID: 1}
	for _, u := range us {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, ex := range f.users {
		if u.Email != nil && ex.Email != nil && *u.Email == *ex.Email {
			return domain.Conflict("USER_EXISTS", "user already exists")
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.NotFound("USER_NOT_FOUND", "no user with id %d", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context, onlyActive bool) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.users {
		if onlyActive && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) ListByIDs(_ context.Context, ids []uint64) ([]model.User, error) {
	out := []model.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, id uint64, p repository.UserPatch) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.NotFound("USER_NOT_FOUND", "no user with id %d", id)
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = p.Email
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.TgID != nil {
		u.TgID = p.TgID
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	cp := *u
	return &cp, nil
}

type fakeCafes struct {
	cafes    map[uint64]*model.Cafe
	managers map[uint64]map[uint64]struct{}
	nextID   uint64

	replacedManagers map[uint64][]uint64
}

func newFakeCafes(cs ...*model.Cafe) *fakeCafes {
	f := &fakeCafes{
		cafes:            map[uint64]*model.Cafe{},
		managers:         map[uint64]map[uint64]struct{}{},
		nextID:           1,
		replacedManagers: map[uint64][]uint64{},
	}
	for _, c := range cs {
		f.cafes[c.ID] = c
		if c.ID >= f.nextID {
			f.nextID = c.ID + 1
		}
	}
	return f
}

func (f *fakeCafes) setManagers(cafeID uint64, ids ...uint64) {
	set := map[uint64]struct{}{}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	f.managers[cafeID] = set
}

func (f *fakeCafes) Create(_ context.Context, c *model.Cafe, managerIDs []uint64) error {
	c.ID = f.nextID
	f.nextID++
	f.cafes[c.ID] = c
	f.setManagers(c.ID, managerIDs...)
	return nil
}

func (f *fakeCafes) GetByID(_ context.Context, id uint64) (*model.Cafe, error) {
	c, ok := f.cafes[id]
	if !ok {
		return nil, domain.NotFound("CAFE_NOT_FOUND", "no cafe with id %d", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCafes) GetByNameAndAddress(_ context.Context, name, address string) (*model.Cafe, error) {
	for _, c := range f.cafes {
		if c.Name == name && c.Address == address {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCafes) List(_ context.Context, onlyActive bool) ([]model.Cafe, error) {
	out := []model.Cafe{}
	for _, c := range f.cafes {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCafes) Update(_ context.Context, id uint64, p repository.CafePatch) (*model.Cafe, error) {
	c, ok := f.cafes[id]
	if !ok {
		return nil, domain.NotFound("CAFE_NOT_FOUND", "no cafe with id %d", id)
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCafes) SoftDelete(_ context.Context, id uint64) (*model.Cafe, error) {
	c, ok := f.cafes[id]
	if !ok {
		return nil, domain.NotFound("CAFE_NOT_FOUND", "no cafe with id %d", id)
	}
	c.IsActive = false
	cp := *c
	return &cp, nil
}

func (f *fakeCafes) ManagerIDs(_ context.Context, cafeID uint64) (map[uint64]struct{}, error) {
	set, ok := f.managers[cafeID]
	if !ok {
		return map[uint64]struct{}{}, nil
	}
	return set, nil
}

func (f *fakeCafes) ReplaceManagers(_ context.Context, cafeID uint64, managerIDs []uint64) error {
	f.setManagers(cafeID, managerIDs...)
	f.replacedManagers[cafeID] = managerIDs
	return nil
}

func (f *fakeCafes) ManagedCafeIDs(_ context.Context, userID uint64) ([]uint64, error) {
	out := []uint64{}
	for cafeID, set := range f.managers {
		if _, ok := set[userID]; ok {
			out = append(out, cafeID)
		}
	}
	return out, nil
}

type fakeTables struct {
	tables map[uint64]*model.Table
}

func newFakeTables(ts ...*model.Table) *fakeTables {
	f := &fakeTables{tables: map[uint64]*model.Table{}}
	for _, t := range ts {
		f.tables[t.ID] = t
	}
	return f
}

func (f *fakeTables) Create(_ context.Context, t *model.Table) error {
	t.ID = uint64(len(f.tables) + 1)
	f.tables[t.ID] = t
	return nil
}

func (f *fakeTables) GetByID(_ context.Context, id uint64) (*model.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "no table with id %d", id)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTables) ListByCafe(_ context.Context, cafeID uint64, onlyActive bool) ([]model.Table, error) {
	out := []model.Table{}
	for _, t := range f.tables {
		if t.CafeID != cafeID {
			continue
		}
		if onlyActive && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTables) ListByIDs(_ context.Context, cafeID uint64, ids []uint64) ([]model.Table, error) {
	out := []model.Table{}
	for _, id := range ids {
		if t, ok := f.tables[id]; ok && t.CafeID == cafeID && t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTables) Update(_ context.Context, id uint64, p repository.TablePatch) (*model.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "no table with id %d", id)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.SeatNumber != nil {
		t.SeatNumber = *p.SeatNumber
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTables) SoftDelete(_ context.Context, id uint64) (*model.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return nil, domain.NotFound("TABLE_NOT_FOUND", "no table with id %d", id)
	}
	t.IsActive = false
	cp := *t
	return &cp, nil
}

type fakeSlots struct {
	slots map[uint64]*model.Slot
}

func newFakeSlots(ss ...*model.Slot) *fakeSlots {
	f := &fakeSlots{slots: map[uint64]*model.Slot{}}
	for _, s := range ss {
		f.slots[s.ID] = s
	}
	return f
}

func (f *fakeSlots) Create(_ context.Context, s *model.Slot) error {
	s.ID = uint64(len(f.slots) + 1)
	f.slots[s.ID] = s
	return nil
}

func (f *fakeSlots) GetByID(_ context.Context, id uint64) (*model.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, domain.NotFound("SLOT_NOT_FOUND", "no slot with id %d", id)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlots) ListByCafe(_ context.Context, cafeID uint64, onlyActive bool) ([]model.Slot, error) {
	out := []model.Slot{}
	for _, s := range f.slots {
		if s.CafeID != cafeID {
			continue
		}
		if onlyActive && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSlots) ListByIDs(_ context.Context, cafeID uint64, ids []uint64) ([]model.Slot, error) {
	out := []model.Slot{}
	for _, id := range ids {
		if s, ok := f.slots[id]; ok && s.CafeID == cafeID && s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSlots) Update(_ context.Context, id uint64, p repository.SlotPatch) (*model.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, domain.NotFound("SLOT_NOT_FOUND", "no slot with id %d", id)
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSlots) Deactivate(_ context.Context, id uint64) (*model.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, domain.NotFound("SLOT_NOT_FOUND", "no slot with id %d", id)
	}
	s.IsActive = false
	cp := *s
	return &cp, nil
}

type fakeBookings struct {
	bookings map[uint64]*model.Booking
	nextID   uint64

	occupancies []repository.Occupancy
	lastExclude uint64
	lastFilter  repository.BookingFilter
}

func newFakeBookings(bs ...*model.Booking) *fakeBookings {
	f := &fakeBookings{bookings: map[uint64]*model.Booking{}, nextID: 1}
	for _, b := range bs {
		f.bookings[b.ID] = b
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
	}
	return f
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	b.ID = f.nextID
	f.nextID++
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, domain.NotFound("BOOKING_NOT_FOUND", "no booking with id %d", id)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) List(_ context.Context, filter repository.BookingFilter) ([]model.Booking, error) {
	f.lastFilter = filter
	out := []model.Booking{}
	for _, b := range f.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.CafeID != nil && b.CafeID != *filter.CafeID {
			continue
		}
		if !filter.ShowAll && !b.IsActive {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookings) Update(_ context.Context, b *model.Booking, p repository.BookingPatch) (*model.Booking, error) {
	cur := f.bookings[b.ID]
	if p.Date != nil {
		cur.Date = *p.Date
	}
	if p.TableIDs != nil {
		cur.TableIDs = p.TableIDs
	}
	if p.SlotIDs != nil {
		cur.SlotIDs = p.SlotIDs
	}
	if p.GuestNumber != nil {
		cur.GuestNumber = *p.GuestNumber
	}
	if p.Note != nil {
		cur.Note = p.Note
	}
	if p.Status != nil {
		cur.Status = *p.Status
		if *p.Status != model.BookingActive {
			cur.IsActive = false
		}
	}
	cp := *cur
	return &cp, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, domain.NotFound("BOOKING_NOT_FOUND", "no booking with id %d", id)
	}
	if b.Status == model.BookingActive && b.IsActive {
		b.Status = model.BookingCancelled
		b.IsActive = false
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) ActiveOccupancies(_ context.Context, _ uint64, _ time.Time, _, _ []uint64, excludeBookingID uint64) ([]repository.Occupancy, error) {
	f.lastExclude = excludeBookingID
	return f.occupancies, nil
}
