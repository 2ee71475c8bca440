package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/storage"
	"github.com/devquest/codenexus/internal/server/storage/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) *memstore.Store {
	t.Helper()
	s, err := memstore.New(memstore.WithClock(tickingClock()))
	require.NoError(t, err)
	return s
}

func newForum(t *testing.T) (*ForumService, *memstore.Store) {
	t.Helper()
	s := newTestStore(t)
	return NewForumService(s, logging.NewNopLogger()), s
}

func mkUser(t *testing.T, s storage.Storage, name string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com", Password: "hash"})
	require.NoError(t, err)
	return u
}

func notificationsOf(t *testing.T, s storage.Storage, userID int64, kind string) []*models.Notification {
	t.Helper()
	all, err := s.GetNotifications(context.Background(), userID, storage.Page{Limit: 1000})
	require.NoError(t, err)
	var out []*models.Notification
	for _, n := range all {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

func reputation(t *testing.T, s storage.Storage, userID int64) int {
	t.Helper()
	r, err := s.GetUserReputation(context.Background(), userID)
	require.NoError(t, err)
	return r
}

// failingNotifications makes CreateNotification fail for one notification
// type, inside transactions too.
type failingNotifications struct {
	storage.Storage
	kind string
}

func (f failingNotifications) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.Type == f.kind {
		return nil, errors.New("notification insert failed")
	}
	return f.Storage.CreateNotification(ctx, n)
}

func (f failingNotifications) WithinTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	return f.Storage.WithinTx(ctx, func(tx storage.Storage) error {
		return fn(failingNotifications{Storage: tx, kind: f.kind})
	})
}

// --- threads ---

func TestCreateThread_PostSubscriptionAndBadges(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "  Goroutine leaks  ", Content: "How do I find them?"})
	require.NoError(t, err)
	assert.Equal(t, "Goroutine leaks", th.Title)
	assert.Zero(t, th.ViewCount)

	posts, err := s.GetPosts(ctx, th.ID, storage.Page{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "How do I find them?", posts[0].Content)

	sub, err := s.GetSubscription(ctx, alice.ID, &th.ID, nil)
	require.NoError(t, err)
	assert.True(t, sub.NotifyByEmail)
	assert.True(t, sub.NotifyInPlatform)

	// First Post (+5) and First Thread (+10).
	assert.Equal(t, 15, reputation(t, s, alice.ID))
	assert.Len(t, notificationsOf(t, s, alice.ID, models.NotificationBadge), 2)
}

func TestCreateThread_WithoutContentHasNoPost(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 2, Title: "Empty"})
	require.NoError(t, err)

	n, err := s.CountPostsByThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 10, reputation(t, s, alice.ID))
}

func TestCreateThread_UnknownCategoryRollsBack(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")

	_, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 999, Title: "Lost", Content: "x"})
	require.ErrorIs(t, err, common.ErrorNotFound)

	threads, err := s.GetThreads(ctx, storage.Page{})
	require.NoError(t, err)
	assert.Empty(t, threads)

	_, err = f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "   "})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestUpdateThread_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "Title"})
	require.NoError(t, err)

	closed := true
	_, err = f.UpdateThread(ctx, bob.ID, th.ID, models.ThreadUpdate{IsClosed: &closed})
	require.ErrorIs(t, err, common.ErrorForbidden)

	badCat := int64(42)
	_, err = f.UpdateThread(ctx, alice.ID, th.ID, models.ThreadUpdate{CategoryID: &badCat})
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, err := f.UpdateThread(ctx, alice.ID, th.ID, models.ThreadUpdate{IsClosed: &closed})
	require.NoError(t, err)
	assert.True(t, got.IsClosed)

	_, err = f.UpdateThread(ctx, alice.ID, 404, models.ThreadUpdate{IsClosed: &closed})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestViewThread_CountsViewsAndDecorates(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 3, Title: "Hooks", Content: "useEffect"})
	require.NoError(t, err)

	v, err := f.ViewThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.ViewCount)
	require.NotNil(t, v.User)
	assert.Equal(t, "alice", v.User.Name)
	require.NotNil(t, v.Category)
	assert.Equal(t, "React", v.Category.Name)
	assert.Equal(t, 1, v.ReplyCount)

	v, err = f.ViewThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v.ViewCount)

	_, err = f.ViewThread(ctx, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestThreadListings(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")

	t1, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "one"})
	require.NoError(t, err)
	t2, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 2, Title: "two"})
	require.NoError(t, err)
	_, err = f.ViewThread(ctx, t1.ID)
	require.NoError(t, err)

	recent, err := f.Threads(ctx, storage.Page{})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, t2.ID, recent[0].ID)

	popular, err := f.PopularThreads(ctx, storage.Page{})
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, t1.ID, popular[0].ID)

	inCat, err := f.CategoryThreads(ctx, 2, storage.Page{})
	require.NoError(t, err)
	require.Len(t, inCat, 1)
	assert.Equal(t, t2.ID, inCat[0].ID)

	_, err = f.CategoryThreads(ctx, 77, storage.Page{})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	cats, err := f.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 6)
}

// --- posts ---

func TestCreatePost_NotificationFanOut(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")
	carol := mkUser(t, s, "carol")
	dave := mkUser(t, s, "dave")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "Closures", Content: "Explain"})
	require.NoError(t, err)

	cat := int64(1)
	_, err = f.Subscribe(ctx, bob.ID, NewSubscription{CategoryID: &cat, NotifyInPlatform: true})
	require.NoError(t, err)
	_, err = f.Subscribe(ctx, carol.ID, NewSubscription{CategoryID: &cat, NotifyByEmail: true})
	require.NoError(t, err)

	reply, err := f.CreatePost(ctx, dave.ID, NewPost{ThreadID: th.ID, Content: "It captures variables"})
	require.NoError(t, err)

	threadReplies := notificationsOf(t, s, alice.ID, models.NotificationThreadReply)
	require.Len(t, threadReplies, 1)
	assert.Equal(t, `dave replied to your thread "Closures"`, threadReplies[0].Content)
	require.NotNil(t, threadReplies[0].RelatedID)
	assert.Equal(t, reply.ID, *threadReplies[0].RelatedID)
	assert.Empty(t, notificationsOf(t, s, alice.ID, models.NotificationSubscription), "thread owner is notified once")

	subNotes := notificationsOf(t, s, bob.ID, models.NotificationSubscription)
	require.Len(t, subNotes, 1)
	assert.Equal(t, `New activity in subscribed thread "Closures"`, subNotes[0].Content)

	assert.Empty(t, notificationsOf(t, s, carol.ID, models.NotificationSubscription), "email-only subscribers get nothing in-platform")
	assert.Empty(t, notificationsOf(t, s, dave.ID, models.NotificationThreadReply))

	// bob answers dave's post.
	_, err = f.CreatePost(ctx, bob.ID, NewPost{ThreadID: th.ID, Content: "Agreed", ParentID: &reply.ID})
	require.NoError(t, err)

	postReplies := notificationsOf(t, s, dave.ID, models.NotificationPostReply)
	require.Len(t, postReplies, 1)
	assert.Equal(t, "bob replied to your post", postReplies[0].Content)
	assert.Len(t, notificationsOf(t, s, alice.ID, models.NotificationThreadReply), 2)
	assert.Len(t, notificationsOf(t, s, bob.ID, models.NotificationSubscription), 1, "authors are not notified about their own post")

	// dave earned First Post.
	assert.Equal(t, 5, reputation(t, s, dave.ID))
}

func TestCreatePost_FanOutFailureRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")
	dave := mkUser(t, s, "dave")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "Channels", Content: "Buffered or not?"})
	require.NoError(t, err)
	cat := int64(1)
	_, err = f.Subscribe(ctx, bob.ID, NewSubscription{CategoryID: &cat, NotifyInPlatform: true})
	require.NoError(t, err)
	before, err := s.GetThread(ctx, th.ID)
	require.NoError(t, err)

	broken := NewForumService(failingNotifications{Storage: s, kind: models.NotificationSubscription}, logging.NewNopLogger())
	_, err = broken.CreatePost(ctx, dave.ID, NewPost{ThreadID: th.ID, Content: "Depends"})
	require.EqualError(t, err, "notification insert failed")

	posts, err := s.GetPosts(ctx, th.ID, storage.Page{})
	require.NoError(t, err)
	assert.Len(t, posts, 1, "reply is not stored")

	after, err := s.GetThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

	assert.Empty(t, notificationsOf(t, s, alice.ID, models.NotificationThreadReply), "earlier notification is undone")
	assert.Empty(t, notificationsOf(t, s, bob.ID, models.NotificationSubscription))
	assert.Zero(t, reputation(t, s, dave.ID))

	// the store is still usable afterwards
	_, err = f.CreatePost(ctx, dave.ID, NewPost{ThreadID: th.ID, Content: "Depends"})
	require.NoError(t, err)
	assert.Len(t, notificationsOf(t, s, alice.ID, models.NotificationThreadReply), 1)
}

func TestCreatePost_Rules(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "A", Content: "first"})
	require.NoError(t, err)
	other, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "B", Content: "second"})
	require.NoError(t, err)
	otherPosts, err := s.GetPosts(ctx, other.ID, storage.Page{})
	require.NoError(t, err)

	_, err = f.CreatePost(ctx, bob.ID, NewPost{ThreadID: 999, Content: "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.CreatePost(ctx, bob.ID, NewPost{ThreadID: th.ID, Content: "  "})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.CreatePost(ctx, bob.ID, NewPost{ThreadID: th.ID, Content: "x", ParentID: &otherPosts[0].ID})
	assert.ErrorIs(t, err, common.ErrorValidation)

	closed := true
	_, err = f.UpdateThread(ctx, alice.ID, th.ID, models.ThreadUpdate{IsClosed: &closed})
	require.NoError(t, err)

	_, err = f.CreatePost(ctx, bob.ID, NewPost{ThreadID: th.ID, Content: "too late"})
	assert.ErrorIs(t, err, common.ErrorThreadClosed)

	n, err := s.CountPostsByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, notificationsOf(t, s, alice.ID, models.NotificationThreadReply))
}

func TestUpdateAndDeletePost(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "A"})
	require.NoError(t, err)
	p, err := f.CreatePost(ctx, alice.ID, NewPost{ThreadID: th.ID, Content: "draft"})
	require.NoError(t, err)

	_, err = f.UpdatePost(ctx, bob.ID, p.ID, "hijack")
	require.ErrorIs(t, err, common.ErrorForbidden)

	got, err := f.UpdatePost(ctx, alice.ID, p.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", got.Content)

	require.ErrorIs(t, f.DeletePost(ctx, bob.ID, p.ID), common.ErrorForbidden)
	require.NoError(t, f.DeletePost(ctx, alice.ID, p.ID))

	views, err := f.Posts(ctx, 0, th.ID, storage.Page{})
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.UpdatePost(ctx, alice.ID, p.ID, "again")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, f.DeletePost(ctx, alice.ID, p.ID), common.ErrorNotFound)
}

func TestPosts_ScoreUserVoteAndMarkup(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")
	carol := mkUser(t, s, "carol")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 2, Title: "Py", Content: "```python\nprint(1 < 2)\n```"})
	require.NoError(t, err)
	posts, err := s.GetPosts(ctx, th.ID, storage.Page{})
	require.NoError(t, err)
	postID := posts[0].ID

	_, err = f.Vote(ctx, bob.ID, postID, 1)
	require.NoError(t, err)
	_, err = f.Vote(ctx, carol.ID, postID, 1)
	require.NoError(t, err)

	views, err := f.Posts(ctx, bob.ID, th.ID, storage.Page{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].Score)
	assert.Equal(t, 1, views[0].UserVote)
	assert.Equal(t, `<pre class="language-python"><code>print(1 &lt; 2)</code></pre>`, views[0].Content)
	require.NotNil(t, views[0].User)
	assert.Equal(t, alice.ID, views[0].User.ID)

	anon, err := f.Posts(ctx, 0, th.ID, storage.Page{})
	require.NoError(t, err)
	assert.Zero(t, anon[0].UserVote)

	raw, err := s.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, "```python\nprint(1 < 2)\n```", raw.Content, "stored body stays raw")

	_, err = f.Posts(ctx, 0, 999, storage.Page{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

// --- votes ---

func TestVote(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "A", Content: "body"})
	require.NoError(t, err)
	posts, err := s.GetPosts(ctx, th.ID, storage.Page{})
	require.NoError(t, err)
	postID := posts[0].ID
	require.Equal(t, 15, reputation(t, s, alice.ID))

	_, err = f.Vote(ctx, alice.ID, postID, 1)
	require.ErrorIs(t, err, common.ErrorSelfVote)

	_, err = f.Vote(ctx, bob.ID, 999, 1)
	require.ErrorIs(t, err, common.ErrorNotFound)

	res, err := f.Vote(ctx, bob.ID, postID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 1, res.Vote.Value)
	// 15 + 1, then Helping Hand (+15).
	assert.Equal(t, 31, reputation(t, s, alice.ID))

	res, err = f.Vote(ctx, bob.ID, postID, 7)
	require.NoError(t, err)
	assert.Equal(t, -1, res.Vote.Value, "anything but 1 is a downvote")
	assert.Equal(t, -1, res.Score)
	assert.Equal(t, 30, reputation(t, s, alice.ID))
}

// --- subscriptions and notifications ---

func TestSubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "A"})
	require.NoError(t, err)

	_, err = f.Subscribe(ctx, bob.ID, NewSubscription{})
	require.ErrorIs(t, err, common.ErrorValidation)

	missing := int64(999)
	_, err = f.Subscribe(ctx, bob.ID, NewSubscription{ThreadID: &missing})
	require.ErrorIs(t, err, common.ErrorNotFound)

	sub, err := f.Subscribe(ctx, bob.ID, NewSubscription{ThreadID: &th.ID, NotifyInPlatform: true})
	require.NoError(t, err)

	_, err = f.Subscribe(ctx, bob.ID, NewSubscription{ThreadID: &th.ID})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	views, err := f.Subscriptions(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Thread)
	assert.Equal(t, "A", views[0].Thread.Title)
	assert.Nil(t, views[0].Category)

	require.ErrorIs(t, f.Unsubscribe(ctx, alice.ID, sub.ID), common.ErrorForbidden)
	require.NoError(t, f.Unsubscribe(ctx, bob.ID, sub.ID))
	require.ErrorIs(t, f.Unsubscribe(ctx, bob.ID, sub.ID), common.ErrorNotFound)
}

func TestNotifications_MarkRead(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	n1, err := s.CreateNotification(ctx, &models.Notification{UserID: alice.ID, Type: models.NotificationBadge, Content: "one"})
	require.NoError(t, err)
	_, err = s.CreateNotification(ctx, &models.Notification{UserID: alice.ID, Type: models.NotificationBadge, Content: "two"})
	require.NoError(t, err)

	require.ErrorIs(t, f.MarkRead(ctx, bob.ID, n1.ID), common.ErrorForbidden)
	count, err := f.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "a rejected mark-read is rolled back")

	require.NoError(t, f.MarkRead(ctx, alice.ID, n1.ID))
	count, err = f.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, f.MarkAllRead(ctx, alice.ID))
	count, err = f.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	list, err := f.Notifications(ctx, alice.ID, storage.Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Content)

	require.ErrorIs(t, f.MarkRead(ctx, alice.ID, 999), common.ErrorNotFound)
}

// --- moderation and search ---

func TestFlags(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	th, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "A", Content: "spam?"})
	require.NoError(t, err)
	posts, err := s.GetPosts(ctx, th.ID, storage.Page{})
	require.NoError(t, err)

	_, err = f.FlagPost(ctx, bob.ID, posts[0].ID, " ")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = f.FlagPost(ctx, bob.ID, 999, "spam")
	require.ErrorIs(t, err, common.ErrorNotFound)

	flag, err := f.FlagPost(ctx, bob.ID, posts[0].ID, "spam")
	require.NoError(t, err)
	assert.Equal(t, models.FlagPending, flag.Status)

	_, err = f.ResolveFlag(ctx, flag.ID, "banned")
	require.ErrorIs(t, err, common.ErrorValidation)
	_, err = f.Flags(ctx, "weird", storage.Page{})
	require.ErrorIs(t, err, common.ErrorValidation)

	resolved, err := f.ResolveFlag(ctx, flag.ID, models.FlagResolved)
	require.NoError(t, err)
	assert.Equal(t, models.FlagResolved, resolved.Status)

	pending, err := f.Flags(ctx, models.FlagPending, storage.Page{})
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := f.Flags(ctx, "", storage.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")

	_, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 4, Title: "Docker networking", Content: "bridge mode vs host"})
	require.NoError(t, err)
	_, err = f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 4, Title: "Kubernetes", Content: "docker shim removal"})
	require.NoError(t, err)

	_, err = f.Search(ctx, "  do ", storage.Page{})
	require.ErrorIs(t, err, common.ErrorValidation)

	res, err := f.Search(ctx, "DOCKER", storage.Page{})
	require.NoError(t, err)
	require.Len(t, res.Threads, 1)
	assert.Equal(t, "Docker networking", res.Threads[0].Title)
	require.NotNil(t, res.Threads[0].Category)
	assert.Equal(t, "DevOps", res.Threads[0].Category.Name)
	require.Len(t, res.Posts, 1)
	require.NotNil(t, res.Posts[0].Thread)
	assert.Equal(t, "Kubernetes", res.Posts[0].Thread.Title)
	assert.Equal(t, "alice", res.Posts[0].User.Name)
}

// --- profiles and badges ---

func TestProfileAndTopUsers(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	for i := 0; i < 7; i++ {
		_, err := f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "t", Content: "c"})
		require.NoError(t, err)
	}

	p, err := f.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Name)
	assert.Len(t, p.Threads, 5)
	assert.Len(t, p.Posts, 5)

	_, err = f.Profile(ctx, 999)
	require.ErrorIs(t, err, common.ErrorNotFound)

	top, err := f.TopUsers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, alice.ID, top[0].ID)
	assert.Equal(t, bob.ID, top[1].ID)

	rep, err := f.Reputation(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, top[0].Reputation, rep)

	_, err = f.Reputation(ctx, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBadges(t *testing.T) {
	ctx := context.Background()
	f, s := newForum(t)
	alice := mkUser(t, s, "alice")
	bob := mkUser(t, s, "bob")

	all, err := f.Badges(ctx, models.BadgeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 7)

	participation, err := f.Badges(ctx, models.BadgeFilter{Category: "participation"})
	require.NoError(t, err)
	assert.Len(t, participation, 3)

	b, err := f.Badge(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Name, b.Name)

	_, err = f.CreateThread(ctx, alice.ID, NewThread{CategoryID: 1, Title: "t"})
	require.NoError(t, err)

	earned, err := f.UserBadges(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, storage.BadgeFirstThread, earned[0].Badge.Name)

	_, err = f.UserBadges(ctx, 999)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.SetBadgeDisplay(ctx, bob.ID, alice.ID, earned[0].BadgeID, false)
	require.ErrorIs(t, err, common.ErrorForbidden)

	ub, err := f.SetBadgeDisplay(ctx, alice.ID, alice.ID, earned[0].BadgeID, false)
	require.NoError(t, err)
	assert.False(t, ub.DisplayOnProfile)
}
