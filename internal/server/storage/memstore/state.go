package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
)

type pairKey struct {
	userID  int64
	otherID int64
}

type sequences struct {
	user, category, thread, post, subscription, notification, flag, badge int64
}

// state holds the collections. Its methods take no locks; Store serializes
// access and hands state to transactions directly.
type state struct {
	now func() time.Time

	users         map[int64]models.User
	categories    map[int64]models.Category
	threads       map[int64]models.Thread
	posts         map[int64]models.Post
	votes         map[pairKey]models.Vote
	subscriptions map[int64]models.Subscription
	notifications map[int64]models.Notification
	flags         map[int64]models.Flag
	badges        map[int64]models.Badge
	userBadges    map[pairKey]models.UserBadge
	sessions      map[string]models.Session

	seq sequences
}

var _ storage.Storage = (*state)(nil)

func newState(now func() time.Time) *state {
	return &state{
		now:           now,
		users:         map[int64]models.User{},
		categories:    map[int64]models.Category{},
		threads:       map[int64]models.Thread{},
		posts:         map[int64]models.Post{},
		votes:         map[pairKey]models.Vote{},
		subscriptions: map[int64]models.Subscription{},
		notifications: map[int64]models.Notification{},
		flags:         map[int64]models.Flag{},
		badges:        map[int64]models.Badge{},
		userBadges:    map[pairKey]models.UserBadge{},
		sessions:      map[string]models.Session{},
	}
}

func (st *state) clone() *state {
	return &state{
		now:           st.now,
		users:         maps.Clone(st.users),
		categories:    maps.Clone(st.categories),
		threads:       maps.Clone(st.threads),
		posts:         maps.Clone(st.posts),
		votes:         maps.Clone(st.votes),
		subscriptions: maps.Clone(st.subscriptions),
		notifications: maps.Clone(st.notifications),
		flags:         maps.Clone(st.flags),
		badges:        maps.Clone(st.badges),
		userBadges:    maps.Clone(st.userBadges),
		sessions:      maps.Clone(st.sessions),
		seq:           st.seq,
	}
}

func next(counter *int64) int64 {
	*counter++
	return *counter
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, common.ErrorNotFound)
}

func byCreatedDesc[T any](created func(T) time.Time, id func(T) int64) func(a, b T) int {
	return func(a, b T) int {
		if c := created(b).Compare(created(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(b), id(a))
	}
}

func collect[K comparable, V any](m map[K]V, keep func(*V) bool, order func(a, b *V) int) []*V {
	out := make([]*V, 0)
	for _, v := range m {
		if keep(&v) {
			out = append(out, &v)
		}
	}
	slices.SortFunc(out, order)
	return out
}

func copyUser(u models.User) *models.User {
	u.ProgrammingLanguages = slices.Clone(u.ProgrammingLanguages)
	u.Expertise = slices.Clone(u.Expertise)
	return &u
}

// Users

func (st *state) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := st.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return copyUser(u), nil
}

func (st *state) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, notFound("user", email)
}

func (st *state) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if _, err := st.GetUserByEmail(ctx, u.Email); err == nil {
		return nil, fmt.Errorf("email %q: %w", u.Email, common.ErrorAlreadyExists)
	}
	rec := *copyUser(*u)
	rec.ID = next(&st.seq.user)
	rec.Reputation = 0
	rec.CreatedAt = st.now()
	if rec.ProgrammingLanguages == nil {
		rec.ProgrammingLanguages = models.StringList{}
	}
	if rec.Expertise == nil {
		rec.Expertise = models.StringList{}
	}
	st.users[rec.ID] = rec
	return copyUser(rec), nil
}

func (st *state) UpdateUser(_ context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	u, ok := st.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	u.Apply(upd)
	u.ProgrammingLanguages = slices.Clone(u.ProgrammingLanguages)
	u.Expertise = slices.Clone(u.Expertise)
	st.users[id] = u
	return copyUser(u), nil
}

// Categories

func (st *state) GetCategories(_ context.Context) ([]*models.Category, error) {
	return collect(st.categories, func(*models.Category) bool { return true },
		func(a, b *models.Category) int { return cmp.Compare(a.ID, b.ID) }), nil
}

func (st *state) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	c, ok := st.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func (st *state) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	for _, existing := range st.categories {
		if existing.Name == c.Name {
			return nil, fmt.Errorf("category %q: %w", c.Name, common.ErrorAlreadyExists)
		}
	}
	rec := *c
	rec.ID = next(&st.seq.category)
	rec.CreatedAt = st.now()
	st.categories[rec.ID] = rec
	return &rec, nil
}

// Threads

var threadsNewestFirst = byCreatedDesc(
	func(t *models.Thread) time.Time { return t.CreatedAt },
	func(t *models.Thread) int64 { return t.ID },
)

func (st *state) listThreads(keep func(*models.Thread) bool, page storage.Page) []*models.Thread {
	return storage.Paginate(collect(st.threads, keep, threadsNewestFirst), page, storage.DefaultPageSize)
}

func (st *state) GetThreads(_ context.Context, page storage.Page) ([]*models.Thread, error) {
	return st.listThreads(func(*models.Thread) bool { return true }, page), nil
}

func (st *state) GetThreadsByCategory(_ context.Context, categoryID int64, page storage.Page) ([]*models.Thread, error) {
	return st.listThreads(func(t *models.Thread) bool { return t.CategoryID == categoryID }, page), nil
}

func (st *state) GetThreadsByUser(_ context.Context, userID int64, page storage.Page) ([]*models.Thread, error) {
	return st.listThreads(func(t *models.Thread) bool { return t.UserID == userID }, page), nil
}

func (st *state) GetPopularThreads(_ context.Context, page storage.Page) ([]*models.Thread, error) {
	all := collect(st.threads, func(*models.Thread) bool { return true }, func(a, b *models.Thread) int {
		if c := cmp.Compare(b.ViewCount, a.ViewCount); c != 0 {
			return c
		}
		return threadsNewestFirst(a, b)
	})
	return storage.Paginate(all, page, storage.DefaultPageSize), nil
}

func (st *state) GetThread(_ context.Context, id int64) (*models.Thread, error) {
	t, ok := st.threads[id]
	if !ok {
		return nil, notFound("thread", id)
	}
	return &t, nil
}

func (st *state) CreateThread(_ context.Context, t *models.Thread) (*models.Thread, error) {
	now := st.now()
	rec := models.Thread{
		ID:         next(&st.seq.thread),
		Title:      t.Title,
		UserID:     t.UserID,
		CategoryID: t.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	st.threads[rec.ID] = rec
	return &rec, nil
}

func (st *state) UpdateThread(_ context.Context, id int64, upd models.ThreadUpdate) (*models.Thread, error) {
	t, ok := st.threads[id]
	if !ok {
		return nil, notFound("thread", id)
	}
	t.Apply(upd)
	t.UpdatedAt = st.now()
	st.threads[id] = t
	return &t, nil
}

func (st *state) IncrementThreadViewCount(_ context.Context, id int64) error {
	if t, ok := st.threads[id]; ok {
		t.ViewCount++
		st.threads[id] = t
	}
	return nil
}

func (st *state) CountThreadsByUser(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, t := range st.threads {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

// Posts

func (st *state) GetPosts(_ context.Context, threadID int64, page storage.Page) ([]*models.Post, error) {
	all := collect(st.posts,
		func(p *models.Post) bool { return p.ThreadID == threadID && !p.IsDeleted },
		func(a, b *models.Post) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	return storage.Paginate(all, page, storage.DefaultPostPageSize), nil
}

var postsNewestFirst = byCreatedDesc(
	func(p *models.Post) time.Time { return p.CreatedAt },
	func(p *models.Post) int64 { return p.ID },
)

func (st *state) GetPostsByUser(_ context.Context, userID int64, page storage.Page) ([]*models.Post, error) {
	all := collect(st.posts, func(p *models.Post) bool { return p.UserID == userID && !p.IsDeleted }, postsNewestFirst)
	return storage.Paginate(all, page, storage.DefaultPageSize), nil
}

func (st *state) GetPost(_ context.Context, id int64) (*models.Post, error) {
	p, ok := st.posts[id]
	if !ok || p.IsDeleted {
		return nil, notFound("post", id)
	}
	return &p, nil
}

func (st *state) CreatePost(_ context.Context, p *models.Post) (*models.Post, error) {
	now := st.now()
	rec := models.Post{
		ID:        next(&st.seq.post),
		Content:   p.Content,
		UserID:    p.UserID,
		ThreadID:  p.ThreadID,
		ParentID:  p.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.posts[rec.ID] = rec

	if t, ok := st.threads[rec.ThreadID]; ok {
		t.UpdatedAt = now
		st.threads[t.ID] = t
	}
	return &rec, nil
}

func (st *state) UpdatePost(_ context.Context, id int64, upd models.PostUpdate) (*models.Post, error) {
	p, ok := st.posts[id]
	if !ok || p.IsDeleted {
		return nil, notFound("post", id)
	}
	p.Apply(upd)
	p.UpdatedAt = st.now()
	st.posts[id] = p
	return &p, nil
}

func (st *state) countPosts(keep func(models.Post) bool) int {
	n := 0
	for _, p := range st.posts {
		if !p.IsDeleted && keep(p) {
			n++
		}
	}
	return n
}

func (st *state) CountPostsByThread(_ context.Context, threadID int64) (int, error) {
	return st.countPosts(func(p models.Post) bool { return p.ThreadID == threadID }), nil
}

func (st *state) CountPostsByUser(_ context.Context, userID int64) (int, error) {
	return st.countPosts(func(p models.Post) bool { return p.UserID == userID }), nil
}

// Votes

func (st *state) GetVotes(_ context.Context, postID int64) ([]*models.Vote, error) {
	return collect(st.votes, func(v *models.Vote) bool { return v.PostID == postID },
		func(a, b *models.Vote) int { return cmp.Compare(a.UserID, b.UserID) }), nil
}

func (st *state) GetUserVote(_ context.Context, userID, postID int64) (*models.Vote, error) {
	v, ok := st.votes[pairKey{userID, postID}]
	if !ok {
		return nil, notFound("vote", fmt.Sprintf("%d-%d", userID, postID))
	}
	return &v, nil
}

func (st *state) CreateOrUpdateVote(_ context.Context, v *models.Vote) (*models.Vote, error) {
	rec := models.Vote{UserID: v.UserID, PostID: v.PostID, Value: v.Value, CreatedAt: st.now()}
	st.votes[pairKey{rec.UserID, rec.PostID}] = rec

	// Soft-deleted posts still credit their author.
	if p, ok := st.posts[rec.PostID]; ok {
		if owner, ok := st.users[p.UserID]; ok {
			owner.Reputation += rec.Value
			st.users[owner.ID] = owner
		}
	}
	return &rec, nil
}

// Subscriptions

func subscriptionsByID(a, b *models.Subscription) int { return cmp.Compare(a.ID, b.ID) }

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func (st *state) GetSubscriptions(_ context.Context, userID int64) ([]*models.Subscription, error) {
	return collect(st.subscriptions, func(s *models.Subscription) bool { return s.UserID == userID }, subscriptionsByID), nil
}

func (st *state) GetSubscription(_ context.Context, userID int64, threadID, categoryID *int64) (*models.Subscription, error) {
	subs := collect(st.subscriptions, func(s *models.Subscription) bool {
		return s.UserID == userID && (sameID(s.ThreadID, threadID) || sameID(s.CategoryID, categoryID))
	}, subscriptionsByID)
	if len(subs) == 0 {
		return nil, notFound("subscription", fmt.Sprintf("user %d", userID))
	}
	return subs[0], nil
}

func (st *state) GetSubscriptionByID(_ context.Context, id int64) (*models.Subscription, error) {
	s, ok := st.subscriptions[id]
	if !ok {
		return nil, notFound("subscription", id)
	}
	return &s, nil
}

func (st *state) GetSubscribers(_ context.Context, threadID, categoryID int64) ([]*models.Subscription, error) {
	return collect(st.subscriptions, func(s *models.Subscription) bool {
		return sameID(s.ThreadID, &threadID) || sameID(s.CategoryID, &categoryID)
	}, subscriptionsByID), nil
}

func (st *state) CreateSubscription(_ context.Context, s *models.Subscription) (*models.Subscription, error) {
	rec := *s
	rec.ID = next(&st.seq.subscription)
	rec.CreatedAt = st.now()
	st.subscriptions[rec.ID] = rec
	return &rec, nil
}

func (st *state) UpdateSubscription(_ context.Context, id int64, upd models.SubscriptionUpdate) (*models.Subscription, error) {
	s, ok := st.subscriptions[id]
	if !ok {
		return nil, notFound("subscription", id)
	}
	s.Apply(upd)
	st.subscriptions[id] = s
	return &s, nil
}

func (st *state) DeleteSubscription(_ context.Context, id int64) (bool, error) {
	if _, ok := st.subscriptions[id]; !ok {
		return false, nil
	}
	delete(st.subscriptions, id)
	return true, nil
}

// Notifications

var notificationsNewestFirst = byCreatedDesc(
	func(n *models.Notification) time.Time { return n.CreatedAt },
	func(n *models.Notification) int64 { return n.ID },
)

func (st *state) GetNotifications(_ context.Context, userID int64, page storage.Page) ([]*models.Notification, error) {
	all := collect(st.notifications, func(n *models.Notification) bool { return n.UserID == userID }, notificationsNewestFirst)
	return storage.Paginate(all, page, storage.DefaultPageSize), nil
}

func (st *state) GetUnreadNotificationCount(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, nt := range st.notifications {
		if nt.UserID == userID && !nt.IsRead {
			n++
		}
	}
	return n, nil
}

func (st *state) CreateNotification(_ context.Context, n *models.Notification) (*models.Notification, error) {
	rec := *n
	rec.ID = next(&st.seq.notification)
	rec.IsRead = false
	rec.CreatedAt = st.now()
	st.notifications[rec.ID] = rec
	return &rec, nil
}

func (st *state) MarkNotificationAsRead(_ context.Context, id int64) (*models.Notification, error) {
	n, ok := st.notifications[id]
	if !ok {
		return nil, notFound("notification", id)
	}
	n.IsRead = true
	st.notifications[id] = n
	return &n, nil
}

func (st *state) MarkAllNotificationsAsRead(_ context.Context, userID int64) error {
	for id, n := range st.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			st.notifications[id] = n
		}
	}
	return nil
}

// Flags

func (st *state) GetFlags(_ context.Context, status string, page storage.Page) ([]*models.Flag, error) {
	all := collect(st.flags, func(f *models.Flag) bool { return status == "" || f.Status == status },
		byCreatedDesc(
			func(f *models.Flag) time.Time { return f.CreatedAt },
			func(f *models.Flag) int64 { return f.ID },
		))
	return storage.Paginate(all, page, storage.DefaultPageSize), nil
}

func (st *state) CreateFlag(_ context.Context, f *models.Flag) (*models.Flag, error) {
	rec := *f
	rec.ID = next(&st.seq.flag)
	rec.Status = models.FlagPending
	rec.CreatedAt = st.now()
	st.flags[rec.ID] = rec
	return &rec, nil
}

func (st *state) UpdateFlagStatus(_ context.Context, id int64, status string) (*models.Flag, error) {
	f, ok := st.flags[id]
	if !ok {
		return nil, notFound("flag", id)
	}
	f.Status = status
	st.flags[id] = f
	return &f, nil
}

// Badges

func (st *state) GetBadges(_ context.Context, filter models.BadgeFilter) ([]*models.Badge, error) {
	return collect(st.badges, func(b *models.Badge) bool {
		return (filter.Category == "" || b.Category == filter.Category) &&
			(filter.Level == 0 || b.Level == filter.Level)
	}, func(a, b *models.Badge) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}), nil
}

func (st *state) GetBadge(_ context.Context, id int64) (*models.Badge, error) {
	b, ok := st.badges[id]
	if !ok {
		return nil, notFound("badge", id)
	}
	return &b, nil
}

func (st *state) GetBadgeByName(_ context.Context, name string) (*models.Badge, error) {
	for _, b := range st.badges {
		if strings.EqualFold(b.Name, name) {
			return &b, nil
		}
	}
	return nil, notFound("badge", name)
}

func (st *state) CreateBadge(ctx context.Context, b *models.Badge) (*models.Badge, error) {
	if _, err := st.GetBadgeByName(ctx, b.Name); err == nil {
		return nil, fmt.Errorf("badge %q: %w", b.Name, common.ErrorAlreadyExists)
	}
	rec := *b
	rec.ID = next(&st.seq.badge)
	rec.CreatedAt = st.now()
	st.badges[rec.ID] = rec
	return &rec, nil
}

func (st *state) UpdateBadge(_ context.Context, id int64, upd models.BadgeUpdate) (*models.Badge, error) {
	b, ok := st.badges[id]
	if !ok {
		return nil, notFound("badge", id)
	}
	b.Apply(upd)
	st.badges[id] = b
	return &b, nil
}

func (st *state) GetUserBadges(_ context.Context, userID int64) ([]*models.UserBadgeWithBadge, error) {
	out := make([]*models.UserBadgeWithBadge, 0)
	for _, ub := range st.userBadges {
		if ub.UserID != userID {
			continue
		}
		b, ok := st.badges[ub.BadgeID]
		if !ok {
			continue
		}
		out = append(out, &models.UserBadgeWithBadge{UserBadge: ub, Badge: &b})
	}
	slices.SortFunc(out, func(a, b *models.UserBadgeWithBadge) int {
		if a.DisplayOnProfile != b.DisplayOnProfile {
			if a.DisplayOnProfile {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Badge.Level, a.Badge.Level); c != 0 {
			return c
		}
		if c := b.EarnedAt.Compare(a.EarnedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.BadgeID, b.BadgeID)
	})
	return out, nil
}

func (st *state) GetUserBadge(_ context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	ub, ok := st.userBadges[pairKey{userID, badgeID}]
	if !ok {
		return nil, notFound("user badge", fmt.Sprintf("%d-%d", userID, badgeID))
	}
	return &ub, nil
}

func (st *state) AwardBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	key := pairKey{userID, badgeID}
	if ub, ok := st.userBadges[key]; ok {
		return &ub, nil
	}
	badge, ok := st.badges[badgeID]
	if !ok {
		return nil, notFound("badge", badgeID)
	}
	user, ok := st.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}

	rec := models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: st.now(), DisplayOnProfile: true}
	st.userBadges[key] = rec

	if _, err := st.CreateNotification(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationBadge,
		Content: storage.BadgeNotification(&badge),
	}); err != nil {
		return nil, err
	}

	user.Reputation += badge.ReputationPoints
	st.users[userID] = user
	return &rec, nil
}

func (st *state) UpdateUserBadgeDisplay(_ context.Context, userID, badgeID int64, display bool) (*models.UserBadge, error) {
	key := pairKey{userID, badgeID}
	ub, ok := st.userBadges[key]
	if !ok {
		return nil, notFound("user badge", fmt.Sprintf("%d-%d", userID, badgeID))
	}
	ub.DisplayOnProfile = display
	st.userBadges[key] = ub
	return &ub, nil
}

// Reputation

func (st *state) GetUserReputation(_ context.Context, userID int64) (int, error) {
	u, ok := st.users[userID]
	if !ok {
		return 0, notFound("user", userID)
	}
	return u.Reputation, nil
}

func (st *state) UpdateUserReputation(ctx context.Context, userID int64, delta int) (*models.User, error) {
	u, ok := st.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	u.Reputation += delta
	st.users[userID] = u

	if _, err := storage.CheckAndAwardBadges(ctx, st, userID); err != nil {
		return nil, err
	}
	return st.GetUser(ctx, userID)
}

func (st *state) GetTopUsers(_ context.Context, limit int) ([]*models.User, error) {
	all := make([]*models.User, 0, len(st.users))
	for _, u := range st.users {
		all = append(all, copyUser(u))
	}
	slices.SortFunc(all, func(a, b *models.User) int {
		if c := cmp.Compare(b.Reputation, a.Reputation); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return storage.Paginate(all, storage.Page{Limit: limit}, storage.DefaultTopUsers), nil
}

// Search

func contains(s, query string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(query))
}

func (st *state) SearchThreads(_ context.Context, query string, page storage.Page) ([]*models.Thread, error) {
	return st.listThreads(func(t *models.Thread) bool { return contains(t.Title, query) }, page), nil
}

func (st *state) SearchPosts(_ context.Context, query string, page storage.Page) ([]*models.Post, error) {
	all := collect(st.posts, func(p *models.Post) bool { return !p.IsDeleted && contains(p.Content, query) }, postsNewestFirst)
	return storage.Paginate(all, page, storage.DefaultPageSize), nil
}

// Storage plumbing for the transactional view.

func (st *state) Sessions() storage.SessionStore { return stateSessions{st} }

func (st *state) WithinTx(_ context.Context, fn func(tx storage.Storage) error) error {
	return fn(st)
}

func (st *state) Ping(context.Context) error { return nil }

func (st *state) Close() error { return nil }
