package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/school-healthcheck/internal/models"
)

func TestAgeAt(t *testing.T) {
	birth := time.Date(2015, 9, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"day_before_birthday", time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC), 9},
		{"on_birthday", time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), 10},
		{"day_after_birthday", time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC), 10},
		{"earlier_month", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 9},
		{"before_birth", time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ageAt(birth, tc.at); got != tc.want {
				t.Fatalf("ожидали %d, получили %d", tc.want, got)
			}
		})
	}
}

func TestEligibleStudents(t *testing.T) {
	ctx := context.Background()
	roster := &fakeRoster{students: []models.Student{
		studentBorn(1, "1А", 7),
		studentBorn(2, "3Б", 9),
		studentBorn(3, "5А", 11),
		studentBorn(4, "9А", 15),
	}}

	t.Run("age_range_whole_school", func(t *testing.T) {
		svc := newTestService(newFakeStore(), roster, nil)
		c := validCampaign() // 7..11, классы не заданы
		id := mustCreate(t, svc, c)

		out, err := svc.EligibleStudents(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 3 {
			t.Fatalf("ожидали 3 учеников, получили %d", len(out))
		}
		for _, es := range out {
			if es.Consent != models.ConsentNoForm {
				t.Fatalf("до рассылки статус должен быть no_form, получили %s", es.Consent)
			}
		}
	})

	t.Run("classes_narrow_selection", func(t *testing.T) {
		svc := newTestService(newFakeStore(), roster, nil)
		c := validCampaign()
		c.TargetClasses = []string{"3Б", "9А"}
		id := mustCreate(t, svc, c)

		out, err := svc.EligibleStudents(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		// 9А отсекается возрастом: критерии соединяются по И
		if len(out) != 1 || out[0].Student.ID != 2 {
			t.Fatalf("ожидали только ученика 2, получили %+v", out)
		}
	})

	t.Run("classes_without_age_range", func(t *testing.T) {
		svc := newTestService(newFakeStore(), roster, nil)
		c := validCampaign()
		c.MinAge, c.MaxAge = nil, nil
		c.TargetClasses = []string{"9А"}
		id := mustCreate(t, svc, c)

		out, err := svc.EligibleStudents(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0].Student.ID != 4 {
			t.Fatalf("ожидали только ученика 4, получили %+v", out)
		}
	})

	t.Run("roster_failure_is_collaborator_error", func(t *testing.T) {
		bad := &fakeRoster{err: errors.New("реестр лёг")}
		svc := newTestService(newFakeStore(), bad, nil)
		id := mustCreate(t, svc, validCampaign())

		var ce *CollaboratorError
		if _, err := svc.EligibleStudents(ctx, id); !errors.As(err, &ce) {
			t.Fatalf("ожидали CollaboratorError, получили %v", err)
		}
		if ce.Collaborator != "roster" {
			t.Fatalf("ожидали roster, получили %s", ce.Collaborator)
		}
	})
}

func TestEligibleStudentsWithStatus(t *testing.T) {
	ctx := context.Background()
	roster := &fakeRoster{students: []models.Student{
		studentBorn(1, "3А", 9),
		studentBorn(2, "3А", 9),
	}}
	store := newFakeStore()
	svc := newTestService(store, roster, newFakeNotifier())

	id := mustCreate(t, svc, validCampaign())
	if _, err := svc.Approve(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Dispatch(ctx, id, ""); err != nil {
		t.Fatal(err)
	}

	forms, _ := store.ListForms(ctx, id)
	if err := svc.RespondToForm(ctx, forms[0].ID, models.ConsentConfirmed); err != nil {
		t.Fatal(err)
	}

	out, err := svc.EligibleStudentsWithStatus(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("ожидали 2 учеников, получили %d", len(out))
	}
	byID := map[int64]models.EligibleStudent{}
	for _, es := range out {
		byID[es.Student.ID] = es
	}
	responded := byID[forms[0].StudentID]
	if responded.Consent != models.ConsentConfirmed || responded.FormID == nil || responded.FormSent == nil {
		t.Fatalf("ответивший ученик отражён неверно: %+v", responded)
	}
	other := byID[forms[1].StudentID]
	if other.Consent != models.ConsentPending {
		t.Fatalf("неответивший должен быть pending, получили %s", other.Consent)
	}
}
