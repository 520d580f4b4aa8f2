package services_test

import (
	"sort"

	"github.com/google/uuid"
	"github.com/techagentng/scamwatch/config"
	"github.com/techagentng/scamwatch/db"
	errs "github.com/techagentng/scamwatch/errors"
	"github.com/techagentng/scamwatch/models"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		LevelSilver:   100,
		LevelGold:     500,
		LevelPlatinum: 1500,
		LevelDiamond:  5000,
	}
}

func newUserWithRole(id uint, username, roleName string) *models.User {
	u := &models.User{
		Fullname: username,
		Username: username,
		Email:    username + "@example.com",
		Role:     models.Role{ID: uuid.New(), Name: roleName},
	}
	u.ID = id
	return u
}

// fakeIncidentRepo is an in-memory stand-in for db.IncidentRepository. It
// mirrors the repository's compare-and-set semantics so stale and
// duplicate paths behave like the real thing.
type fakeIncidentRepo struct {
	incidents    map[uuid.UUID]*models.Incident
	messages     map[uuid.UUID][]models.IncidentMessage
	feedback     map[uuid.UUID]*models.IncidentFeedback
	transactions map[uuid.UUID]*models.PointTransaction
	balances     map[uint]int
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{
		incidents:    make(map[uuid.UUID]*models.Incident),
		messages:     make(map[uuid.UUID][]models.IncidentMessage),
		feedback:     make(map[uuid.UUID]*models.IncidentFeedback),
		transactions: make(map[uuid.UUID]*models.PointTransaction),
		balances:     make(map[uint]int),
	}
}

func (f *fakeIncidentRepo) SaveIncident(incident *models.Incident) (*models.Incident, error) {
	f.incidents[incident.ID] = incident
	return incident, nil
}

func (f *fakeIncidentRepo) GetIncidentByID(id uuid.UUID) (*models.Incident, error) {
	incident, ok := f.incidents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *incident
	return &copied, nil
}

func (f *fakeIncidentRepo) GetIncidents(filter db.IncidentFilter, page, pageSize int) ([]models.Incident, int64, error) {
	var out []models.Incident
	for _, incident := range f.incidents {
		if filter.Status != "" && incident.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && incident.Severity != filter.Severity {
			continue
		}
		if filter.Pincode != "" && incident.Pincode != filter.Pincode {
			continue
		}
		if filter.UserID != 0 && incident.ReportedBy != filter.UserID {
			continue
		}
		out = append(out, *incident)
	}
	return out, int64(len(out)), nil
}

func (f *fakeIncidentRepo) UpdateStatus(id uuid.UUID, from, to models.IncidentStatus) error {
	incident, ok := f.incidents[id]
	if !ok || incident.Status != from {
		return db.ErrStaleStatus
	}
	incident.Status = to
	return nil
}

func (f *fakeIncidentRepo) ApplyTransition(id uuid.UUID, from, to models.IncidentStatus, txn *models.PointTransaction) error {
	incident, ok := f.incidents[id]
	if !ok || incident.Status != from {
		return db.ErrStaleStatus
	}
	if txn != nil {
		if _, exists := f.transactions[txn.IncidentID]; exists {
			return db.ErrDuplicateLedgerEntry
		}
	}
	incident.Status = to
	if txn != nil {
		f.transactions[txn.IncidentID] = txn
		delta := txn.Amount
		if txn.Type == models.TransactionDeduct {
			delta = -delta
		}
		f.balances[txn.UserID] += delta
	}
	return nil
}

func (f *fakeIncidentRepo) UpdateAssignment(id uuid.UUID, assigneeID uint) error {
	incident, ok := f.incidents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	incident.AssignedTo = &assigneeID
	return nil
}

func (f *fakeIncidentRepo) AppendMessage(msg *models.IncidentMessage) error {
	f.messages[msg.IncidentID] = append(f.messages[msg.IncidentID], *msg)
	return nil
}

func (f *fakeIncidentRepo) AttachFeedback(fb *models.IncidentFeedback) error {
	if _, exists := f.feedback[fb.IncidentID]; exists {
		return errs.AlreadyProcessed("duplicate feedback")
	}
	f.feedback[fb.IncidentID] = fb
	return nil
}

func (f *fakeIncidentRepo) HasFeedback(id uuid.UUID) (bool, error) {
	_, ok := f.feedback[id]
	return ok, nil
}

func (f *fakeIncidentRepo) GetPincodeCounts() ([]models.PincodeCount, error) {
	byPincode := make(map[string]int)
	for _, incident := range f.incidents {
		if incident.Pincode != "" {
			byPincode[incident.Pincode]++
		}
	}
	var counts []models.PincodeCount
	for pincode, count := range byPincode {
		counts = append(counts, models.PincodeCount{Pincode: pincode, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

// fakeAuthRepo holds users in a map; only the lookups the services touch
// carry real behavior.
type fakeAuthRepo struct {
	users map[uint]*models.User
}

func newFakeAuthRepo(users ...*models.User) *fakeAuthRepo {
	f := &fakeAuthRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeAuthRepo) CreateUser(user *models.User) (*models.User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeAuthRepo) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeAuthRepo) IsEmailExist(email string) error    { return nil }
func (f *fakeAuthRepo) IsUsernameExist(name string) error  { return nil }
func (f *fakeAuthRepo) AddToBlacklist(b *models.Blacklist) error { return nil }
func (f *fakeAuthRepo) IsTokenInBlacklist(token string) bool     { return false }

func (f *fakeAuthRepo) FindRoleByName(name string) (*models.Role, error) {
	return &models.Role{ID: uuid.New(), Name: name}, nil
}

func (f *fakeAuthRepo) FindRoleByID(id uuid.UUID) (*models.Role, error) {
	return &models.Role{ID: id, Name: models.RoleUser}, nil
}

// fakeNotifier records status-change notifications.
type fakeNotifier struct {
	notified []uuid.UUID
}

func (f *fakeNotifier) NotifyStatusChange(userID uint, incidentID uuid.UUID, title string, to models.IncidentStatus) {
	f.notified = append(f.notified, incidentID)
}

func (f *fakeNotifier) ListForUser(userID uint) ([]models.Notification, *errs.Error) {
	return nil, nil
}

func (f *fakeNotifier) MarkRead(id, userID uint) *errs.Error { return nil }

// noopBoard satisfies the cache invalidation hook.
type noopBoard struct {
	invalidations int
}

func (n *noopBoard) Invalidate() { n.invalidations++ }

// fakePointsRepo mirrors the leaderboard ordering the SQL query produces:
// points descending, earliest record first on ties, then user id.
type fakePointsRepo struct {
	records map[uint]*models.UserPoints
	txns    map[uuid.UUID]*models.PointTransaction
}

func newFakePointsRepo(records ...*models.UserPoints) *fakePointsRepo {
	f := &fakePointsRepo{
		records: make(map[uint]*models.UserPoints),
		txns:    make(map[uuid.UUID]*models.PointTransaction),
	}
	for _, r := range records {
		f.records[r.UserID] = r
	}
	return f
}

func (f *fakePointsRepo) GetUserPoints(userID uint) (*models.UserPoints, error) {
	if r, ok := f.records[userID]; ok {
		return r, nil
	}
	r := &models.UserPoints{UserID: userID, TotalPoints: 0}
	f.records[userID] = r
	return r, nil
}

func (f *fakePointsRepo) HasTransactionForIncident(incidentID uuid.UUID) (bool, error) {
	_, ok := f.txns[incidentID]
	return ok, nil
}

func (f *fakePointsRepo) GetTransactionsByUser(userID uint) ([]models.PointTransaction, error) {
	var out []models.PointTransaction
	for _, t := range f.txns {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakePointsRepo) ListRanked() ([]models.UserPoints, error) {
	out := make([]models.UserPoints, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (f *fakePointsRepo) CountUsers() (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakePointsRepo) SumAllBalances() (int, error) {
	total := 0
	for _, r := range f.records {
		total += r.TotalPoints
	}
	return total, nil
}

// fakePostRepo is an in-memory db.PostRepository with the same
// one-vote-per-user rule as the real transaction.
type fakePostRepo struct {
	posts    map[uuid.UUID]*models.CommunityPost
	comments map[uuid.UUID][]models.PostComment
	votes    map[uuid.UUID]map[uint]int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    make(map[uuid.UUID]*models.CommunityPost),
		comments: make(map[uuid.UUID][]models.PostComment),
		votes:    make(map[uuid.UUID]map[uint]int),
	}
}

func (f *fakePostRepo) SavePost(post *models.CommunityPost) (*models.CommunityPost, error) {
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) GetPostByID(id uuid.UUID) (*models.CommunityPost, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) GetPosts(page, pageSize int) ([]models.CommunityPost, int64, error) {
	var out []models.CommunityPost
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) AddComment(comment *models.PostComment) error {
	f.comments[comment.PostID] = append(f.comments[comment.PostID], *comment)
	return nil
}

func (f *fakePostRepo) Vote(postID uuid.UUID, userID uint, value int) error {
	post, ok := f.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if f.votes[postID] == nil {
		f.votes[postID] = make(map[uint]int)
	}
	prev, voted := f.votes[postID][userID]
	if voted {
		if prev == value {
			return db.ErrDuplicateVote
		}
		f.votes[postID][userID] = value
		if value > 0 {
			post.Upvotes++
			post.Downvotes--
		} else {
			post.Upvotes--
			post.Downvotes++
		}
		return nil
	}
	f.votes[postID][userID] = value
	if value > 0 {
		post.Upvotes++
	} else {
		post.Downvotes++
	}
	return nil
}

func (f *fakePostRepo) IncrementViews(id uuid.UUID) error {
	if post, ok := f.posts[id]; ok {
		post.Views++
	}
	return nil
}
