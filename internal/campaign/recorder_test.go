package campaign

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Spok95/school-healthcheck/internal/models"
)

func inProgressCampaign(t *testing.T, svc *Service) int64 {
	t.Helper()
	ctx := context.Background()
	id := approvedCampaign(t, svc)
	if _, err := svc.Dispatch(ctx, id, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Schedule(ctx, id, ScheduleInput{TimeSlot: "09:00-12:00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, id); err != nil {
		t.Fatal(err)
	}
	return id
}

func visionHearing() map[string]models.CategoryMeasurement {
	return map[string]models.CategoryMeasurement{
		models.CategoryVision:  {VisionLeft: 0.6, VisionRight: 1.0},
		models.CategoryHearing: {HearingLeftDB: 10, HearingRightDB: 15},
	}
}

func TestRecordResult(t *testing.T) {
	ctx := context.Background()
	roster := &fakeRoster{students: []models.Student{studentBorn(1, "3А", 9)}}

	t.Run("classifies_per_campaign_category", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, roster, newFakeNotifier())
		id := inProgressCampaign(t, svc)

		rec, err := svc.RecordResult(ctx, id, RecordInput{
			StudentID: 1,
			Examiner:  "Иванова А.П.",
			Measures:  visionHearing(),
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(rec.Items) != 2 {
			t.Fatalf("ожидали пункт на каждую категорию кампании, получили %d", len(rec.Items))
		}
		byCat := map[string]models.ResultStatus{}
		for _, it := range rec.Items {
			byCat[it.Category] = it.Status
		}
		if byCat[models.CategoryVision] != models.ResultAbnormal {
			t.Fatalf("зрение: ожидали abnormal, получили %s", byCat[models.CategoryVision])
		}
		if byCat[models.CategoryHearing] != models.ResultNormal {
			t.Fatalf("слух: ожидали normal, получили %s", byCat[models.CategoryHearing])
		}
	})

	t.Run("requires_in_progress", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, roster, newFakeNotifier())
		id := approvedCampaign(t, svc)

		var pre *PreconditionError
		_, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 1, Measures: visionHearing()})
		if !errors.As(err, &pre) {
			t.Fatalf("ожидали PreconditionError, получили %v", err)
		}
		if len(pre.Missing) != 1 || pre.Missing[0] != CondCampaignInProgress {
			t.Fatalf("ожидали campaign_in_progress, получили %v", pre.Missing)
		}
	})

	t.Run("empty_submission", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, roster, newFakeNotifier())
		id := inProgressCampaign(t, svc)

		_, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 1})
		if !errors.Is(err, ErrEmptySubmission) {
			t.Fatalf("ожидали ErrEmptySubmission, получили %v", err)
		}

		// замер по чужой категории тоже не считается
		_, err = svc.RecordResult(ctx, id, RecordInput{
			StudentID: 1,
			Measures: map[string]models.CategoryMeasurement{
				models.CategoryOral: {IsAbnormal: true},
			},
		})
		if !errors.Is(err, ErrEmptySubmission) {
			t.Fatalf("ожидали ErrEmptySubmission, получили %v", err)
		}
	})

	t.Run("duplicate_rejected", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, roster, newFakeNotifier())
		id := inProgressCampaign(t, svc)

		if _, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 1, Measures: visionHearing()}); err != nil {
			t.Fatal(err)
		}
		_, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 1, Measures: visionHearing()})
		if !errors.Is(err, ErrDuplicateResult) {
			t.Fatalf("ожидали ErrDuplicateResult, получили %v", err)
		}
	})

	t.Run("concurrent_duplicates", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, roster, newFakeNotifier())
		id := inProgressCampaign(t, svc)

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 1, Measures: visionHearing()})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		okCount, dupCount := 0, 0
		for err := range errs {
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, ErrDuplicateResult):
				dupCount++
			default:
				t.Fatalf("неожиданная ошибка: %v", err)
			}
		}
		if okCount != 1 || dupCount != n-1 {
			t.Fatalf("ожидали ровно одну запись: ok=%d dup=%d", okCount, dupCount)
		}
		out, _ := store.ListResults(ctx, id)
		if len(out) != 1 {
			t.Fatalf("в хранилище должна быть одна запись, получили %d", len(out))
		}
	})

	t.Run("different_students_independent", func(t *testing.T) {
		two := &fakeRoster{students: []models.Student{studentBorn(1, "3А", 9), studentBorn(2, "3А", 9)}}
		store := newFakeStore()
		svc := newTestService(store, two, newFakeNotifier())
		id := inProgressCampaign(t, svc)

		if _, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 1, Measures: visionHearing()}); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.RecordResult(ctx, id, RecordInput{StudentID: 2, Measures: visionHearing()}); err != nil {
			t.Fatal(err)
		}
		out, err := svc.GetResults(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 2 {
			t.Fatalf("ожидали 2 записи, получили %d", len(out))
		}
	})
}
