package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/models"
	"github.com/google/uuid"
)

// memStore is an in-memory database.Store. Caller-scoped sessions see the
// same data as anonymous ones; it records which callers opened them.
type memStore struct {
	mu          sync.Mutex
	profiles    map[uuid.UUID]models.Profile
	credentials map[string]models.Credential
	projects    map[uuid.UUID]models.Project
	comments    map[uuid.UUID]models.Comment
	likes       map[[2]uuid.UUID]bool
	callers     []models.Caller
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		profiles:    map[uuid.UUID]models.Profile{},
		credentials: map[string]models.Credential{},
		projects:    map[uuid.UUID]models.Project{},
		comments:    map[uuid.UUID]models.Comment{},
		likes:       map[[2]uuid.UUID]bool{},
		clock:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) Anon() database.Session { return memSession{m} }

func (m *memStore) AsCaller(ctx context.Context, caller models.Caller, fn func(database.Session) error) error {
	if caller.IsZero() {
		return database.ErrNoCaller
	}
	m.mu.Lock()
	m.callers = append(m.callers, caller)
	m.mu.Unlock()
	return fn(memSession{m})
}

func (m *memStore) addProfile(username string) models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	p := models.Profile{ID: uuid.New(), Username: username, FullName: username + " Tester", Email: username + "@example.com", CreatedAt: now, UpdatedAt: now}
	m.profiles[p.ID] = p
	return p
}

func (m *memStore) addProject(author uuid.UUID, title string) models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	p := models.Project{ID: uuid.New(), Title: title, Description: title + " description", TechStack: []string{"Go"}, AuthorID: author, CreatedAt: now, UpdatedAt: now}
	m.projects[p.ID] = p
	return p
}

func (m *memStore) addComment(author, project uuid.UUID, content string) models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	c := models.Comment{ID: uuid.New(), Content: content, AuthorID: author, ProjectID: project, CreatedAt: now, UpdatedAt: now}
	m.comments[c.ID] = c
	return c
}

func (m *memStore) likeMembers(commentID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key := range m.likes {
		if key[0] == commentID {
			n++
		}
	}
	return n
}

type memSession struct{ m *memStore }

func (s memSession) Profiles() database.ProfileRepository       { return memProfiles(s) }
func (s memSession) Credentials() database.CredentialRepository { return memCredentials(s) }
func (s memSession) Projects() database.ProjectRepository       { return memProjects(s) }
func (s memSession) Comments() database.CommentRepository       { return memComments(s) }
func (s memSession) Likes() database.LikeRepository             { return memLikes(s) }

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type memProfiles memSession

func (r memProfiles) Create(ctx context.Context, p *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := r.m.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	r.m.profiles[p.ID] = *p
	return nil
}

func (r memProfiles) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &p, nil
}

func (r memProfiles) UsernameTaken(ctx context.Context, username string, exceptID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, p := range r.m.profiles {
		if id != exceptID && strings.EqualFold(p.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r memProfiles) matching(search string) []models.Profile {
	var out []models.Profile
	for _, p := range r.m.profiles {
		if search == "" || contains(p.FullName, search) || contains(p.Username, search) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memProfiles) List(ctx context.Context, search string, limit, offset int) ([]models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.matching(search), limit, offset), nil
}

func (r memProfiles) Count(ctx context.Context, search string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.matching(search))), nil
}

func (r memProfiles) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return 0, nil
	}
	for col, v := range changes {
		switch col {
		case "full_name":
			p.FullName = v.(string)
		case "username":
			p.Username = v.(string)
		case "bio":
			bio := v.(string)
			p.Bio = &bio
		case "website":
			website := v.(string)
			p.Website = &website
		}
	}
	p.UpdatedAt = r.m.tick()
	r.m.profiles[id] = p
	return 1, nil
}

func (r memProfiles) Stats(ctx context.Context, activeSince, createdSince time.Time) (models.ProfileStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var stats models.ProfileStats
	for _, p := range r.m.profiles {
		stats.TotalProfiles++
		if !p.UpdatedAt.Before(activeSince) {
			stats.ActiveProfiles++
		}
		if !p.CreatedAt.Before(createdSince) {
			stats.NewProfilesThisMonth++
		}
	}
	return stats, nil
}

type memCredentials memSession

func (r memCredentials) Create(ctx context.Context, c *models.Credential) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.Email = strings.ToLower(c.Email)
	r.m.credentials[c.Email] = *c
	return nil
}

func (r memCredentials) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.credentials[strings.ToLower(email)]
	if !ok {
		return nil, database.ErrNotFound
	}
	if p, ok := r.m.profiles[c.UserID]; ok {
		c.Profile = &p
	}
	return &c, nil
}

type memProjects memSession

func (r memProjects) withAuthor(p models.Project) models.Project {
	if a, ok := r.m.profiles[p.AuthorID]; ok {
		p.Author = &a
	}
	return p
}

func (r memProjects) filter(keep func(models.Project) bool) []models.Project {
	var out []models.Project
	for _, p := range r.m.projects {
		if keep(p) {
			out = append(out, r.withAuthor(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func searchProjects(search string) func(models.Project) bool {
	return func(p models.Project) bool {
		return search == "" || contains(p.Title, search) || contains(p.Description, search)
	}
}

func byAuthor(id uuid.UUID) func(models.Project) bool {
	return func(p models.Project) bool { return p.AuthorID == id }
}

func (r memProjects) List(ctx context.Context, search string, limit, offset int) ([]models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.filter(searchProjects(search)), limit, offset), nil
}

func (r memProjects) Count(ctx context.Context, search string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.filter(searchProjects(search)))), nil
}

func (r memProjects) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.filter(byAuthor(authorID)), limit, offset), nil
}

func (r memProjects) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.filter(byAuthor(authorID)))), nil
}

func (r memProjects) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.projects[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	p = r.withAuthor(p)
	return &p, nil
}

func (r memProjects) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.projects[id]
	return ok, nil
}

func (r memProjects) Create(ctx context.Context, p *models.Project) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := r.m.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	stored.Author = nil
	r.m.projects[p.ID] = stored
	return nil
}

func (r memProjects) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.projects[id]
	if !ok {
		return 0, nil
	}
	for col, v := range changes {
		switch col {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "image_url":
			url := v.(string)
			p.ImageURL = &url
		}
	}
	p.UpdatedAt = r.m.tick()
	r.m.projects[id] = p
	return 1, nil
}

func (r memProjects) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.projects[id]; !ok {
		return 0, nil
	}
	delete(r.m.projects, id)
	return 1, nil
}

type memComments memSession

func (r memComments) withAuthor(c models.Comment) models.Comment {
	if a, ok := r.m.profiles[c.AuthorID]; ok {
		c.Author = &a
	}
	return c
}

func (r memComments) topLevel(projectID uuid.UUID) []models.Comment {
	var out []models.Comment
	for _, c := range r.m.comments {
		if c.ProjectID == projectID && c.ParentID == nil {
			out = append(out, r.withAuthor(c))
		}
	}
	return out
}

func (r memComments) replies(parentID uuid.UUID) []models.Comment {
	var out []models.Comment
	for _, c := range r.m.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, r.withAuthor(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memComments) ListByProject(ctx context.Context, projectID uuid.UUID, order models.CommentSort, limit, offset int) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := r.topLevel(projectID)
	sort.Slice(out, func(i, j int) bool {
		switch order {
		case models.SortOldest:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case models.SortPopular:
			if out[i].LikesCount != out[j].LikesCount {
				return out[i].LikesCount > out[j].LikesCount
			}
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return window(out, limit, offset), nil
}

func (r memComments) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.topLevel(projectID))), nil
}

func (r memComments) ListReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.replies(parentID), limit, offset), nil
}

func (r memComments) CountReplies(ctx context.Context, parentID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.replies(parentID))), nil
}

func (r memComments) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c = r.withAuthor(c)
	return &c, nil
}

func (r memComments) LockByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.FindByID(ctx, id)
}

func (r memComments) Create(ctx context.Context, c *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := r.m.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	r.m.comments[c.ID] = *c
	return nil
}

func (r memComments) shift(id uuid.UUID, delta int, field func(*models.Comment) *int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return database.ErrNotFound
	}
	counter := field(&c)
	*counter += int64(delta)
	if *counter < 0 {
		*counter = 0
	}
	r.m.comments[id] = c
	return nil
}

func (r memComments) AddLikes(ctx context.Context, id uuid.UUID, delta int) error {
	return r.shift(id, delta, func(c *models.Comment) *int64 { return &c.LikesCount })
}

func (r memComments) AddReplies(ctx context.Context, id uuid.UUID, delta int) error {
	return r.shift(id, delta, func(c *models.Comment) *int64 { return &c.RepliesCount })
}

func (r memComments) LikesCount(ctx context.Context, id uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return 0, database.ErrNotFound
	}
	return c.LikesCount, nil
}

type memLikes memSession

func (r memLikes) Exists(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.likes[[2]uuid.UUID{commentID, userID}], nil
}

func (r memLikes) Insert(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]uuid.UUID{commentID, userID}
	if r.m.likes[key] {
		return false, nil
	}
	r.m.likes[key] = true
	return true, nil
}

func (r memLikes) Delete(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := [2]uuid.UUID{commentID, userID}
	if !r.m.likes[key] {
		return false, nil
	}
	delete(r.m.likes, key)
	return true, nil
}

func (r memLikes) LikedAmong(ctx context.Context, userID uuid.UUID, commentIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := map[uuid.UUID]bool{}
	for _, id := range commentIDs {
		if r.m.likes[[2]uuid.UUID{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

func (r memLikes) Count(ctx context.Context, commentID uuid.UUID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for key := range r.m.likes {
		if key[0] == commentID {
			n++
		}
	}
	return n, nil
}
