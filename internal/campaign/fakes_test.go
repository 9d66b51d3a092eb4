package campaign

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-healthcheck/internal/models"
)

// fakeStore — потокобезопасное хранилище в памяти с той же семантикой,
// что у internal/db: идемпотентные вставки, CAS по статусу, уникальность
// результата по паре (кампания, ученик).
type fakeStore struct {
	mu        sync.Mutex
	seq       int64
	campaigns map[int64]*models.Campaign
	forms     map[int64]*models.HealthCheckForm
	results   map[string]*models.ResultRecord

	failCreateForm bool
	storeErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		campaigns: map[int64]*models.Campaign{},
		forms:     map[int64]*models.HealthCheckForm{},
		results:   map[string]*models.ResultRecord{},
	}
}

func (f *fakeStore) nextID() int64 { f.seq++; return f.seq }

func (f *fakeStore) CreateCampaign(_ context.Context, c *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return f.storeErr
	}
	c.ID = f.nextID()
	c.CreatedAt = time.Now()
	cp := *c
	f.campaigns[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetCampaign(_ context.Context, id int64) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	c, ok := f.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListCampaigns(_ context.Context, offset, limit int, status string) ([]models.Campaign, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Campaign
	for _, c := range f.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		all = append(all, *c)
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeStore) SwapCampaignStatus(_ context.Context, id int64, from, to models.CampaignStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (f *fakeStore) UpdateCampaignSchedule(_ context.Context, id int64, slot string, targetCount int, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.TimeSlot = &slot
	c.TargetCount = &targetCount
	if notes != "" {
		c.ScheduleNotes = &notes
	}
	return nil
}

func (f *fakeStore) CampaignStats(_ context.Context, id int64) (*models.CampaignStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &models.CampaignStats{}
	for _, fm := range f.forms {
		if fm.CampaignID != id {
			continue
		}
		st.FormsTotal++
		if fm.SentAt != nil {
			st.FormsSent++
		}
		switch fm.Consent() {
		case models.ConsentConfirmed:
			st.FormsConfirmed++
		case models.ConsentDeclined:
			st.FormsDeclined++
		}
	}
	for _, r := range f.results {
		if r.CampaignID == id {
			st.ResultsTotal++
		}
	}
	return st, nil
}

func (f *fakeStore) CreateForm(_ context.Context, campaignID, studentID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateForm {
		return false, errors.New("хранилище недоступно")
	}
	for _, fm := range f.forms {
		if fm.CampaignID == campaignID && fm.StudentID == studentID {
			return false, nil
		}
	}
	id := f.nextID()
	f.forms[id] = &models.HealthCheckForm{
		ID:         id,
		CampaignID: campaignID,
		StudentID:  studentID,
		CreatedAt:  time.Now(),
	}
	return true, nil
}

func (f *fakeStore) GetForm(_ context.Context, id int64) (*models.HealthCheckForm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fm, ok := f.forms[id]
	if !ok {
		return nil, nil
	}
	cp := *fm
	return &cp, nil
}

func (f *fakeStore) ListForms(_ context.Context, campaignID int64) ([]models.HealthCheckForm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.HealthCheckForm
	for _, fm := range f.forms {
		if fm.CampaignID == campaignID {
			out = append(out, *fm)
		}
	}
	return out, nil
}

func (f *fakeStore) UnsentForms(_ context.Context, campaignID int64) ([]models.FormRecipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FormRecipient
	for _, fm := range f.forms {
		if fm.CampaignID == campaignID && fm.SentAt == nil {
			out = append(out, models.FormRecipient{
				FormID:       fm.ID,
				StudentID:    fm.StudentID,
				StudentName:  "Ученик " + strconv.FormatInt(fm.StudentID, 10),
				ParentChatID: 1000 + fm.StudentID,
			})
		}
	}
	return out, nil
}

func (f *fakeStore) MarkFormSent(_ context.Context, formID int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fm, ok := f.forms[formID]
	if !ok || fm.SentAt != nil {
		return false, nil
	}
	fm.SentAt = &at
	return true, nil
}

func (f *fakeStore) AnyFormSent(_ context.Context, campaignID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fm := range f.forms {
		if fm.CampaignID == campaignID && fm.SentAt != nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SetFormResponse(_ context.Context, formID int64, status models.ConsentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fm, ok := f.forms[formID]
	if !ok {
		return sql.ErrNoRows
	}
	now := time.Now()
	fm.ConsentStatus = &status
	fm.RespondedAt = &now
	return nil
}

func (f *fakeStore) InsertResult(_ context.Context, rec *models.ResultRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strconv.FormatInt(rec.CampaignID, 10) + ":" + strconv.FormatInt(rec.StudentID, 10)
	if _, ok := f.results[key]; ok {
		return false, nil
	}
	rec.ID = f.nextID()
	cp := *rec
	f.results[key] = &cp
	return true, nil
}

func (f *fakeStore) HasResult(_ context.Context, campaignID, studentID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strconv.FormatInt(campaignID, 10) + ":" + strconv.FormatInt(studentID, 10)
	_, ok := f.results[key]
	return ok, nil
}

func (f *fakeStore) ListResults(_ context.Context, campaignID int64) ([]models.ResultRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ResultRecord
	for _, r := range f.results {
		if r.CampaignID == campaignID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeRoster struct {
	students []models.Student
	err      error
}

func (f *fakeRoster) ListStudents(_ context.Context, classNames []string) ([]models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(classNames) == 0 {
		return f.students, nil
	}
	want := map[string]bool{}
	for _, n := range classNames {
		want[n] = true
	}
	var out []models.Student
	for _, s := range f.students {
		if want[s.ClassName] {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeNotifier считает доставки; failFor — чаты, по которым доставка падает.
type fakeNotifier struct {
	mu        sync.Mutex
	delivered map[int64][]string
	failFor   map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{delivered: map[int64][]string{}, failFor: map[int64]bool{}}
}

func (f *fakeNotifier) Deliver(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return errors.New("шлюз недоступен")
	}
	f.delivered[chatID] = append(f.delivered[chatID], text)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, msgs := range f.delivered {
		n += len(msgs)
	}
	return n
}

func newTestService(store *fakeStore, roster *fakeRoster, n *fakeNotifier) *Service {
	if roster == nil {
		roster = &fakeRoster{}
	}
	if n == nil {
		n = newFakeNotifier()
	}
	return New(store, roster, n, time.UTC, zap.NewNop().Sugar())
}

func ptrInt(v int) *int { return &v }

func studentBorn(id int64, class string, yearsAgo int) models.Student {
	return models.Student{
		ID:           id,
		Name:         "Ученик " + strconv.FormatInt(id, 10),
		ClassName:    class,
		BirthDate:    time.Now().UTC().AddDate(-yearsAgo, 0, -30),
		ParentChatID: 1000 + id,
		IsActive:     true,
	}
}
