package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/workspace-sessions/internal/application"
)

type fixtureScheduleDir struct {
	schedule application.Schedule
}

func (d *fixtureScheduleDir) GetSchedule(ctx context.Context, id string) (application.Schedule, error) {
	if id != d.schedule.ID {
		return application.Schedule{}, application.ErrNotFound
	}
	return d.schedule, nil
}

type fixtureSessionTypeDir struct {
	sessionType application.SessionType
}

func (d *fixtureSessionTypeDir) GetSessionType(ctx context.Context, id string) (application.SessionType, error) {
	if id != d.sessionType.ID {
		return application.SessionType{}, application.ErrNotFound
	}
	return d.sessionType, nil
}

type fixtureRoleDir struct {
	roles []application.Role
}

func (d *fixtureRoleDir) ListUserRoles(ctx context.Context, userID, workspaceID int64) ([]application.Role, error) {
	return d.roles, nil
}

type capturingSessionStore struct {
	upserted application.Session
}

func (s *capturingSessionStore) UpsertSession(ctx context.Context, session application.Session) (application.Session, error) {
	s.upserted = session
	return session, nil
}

func (s *capturingSessionStore) GetSession(ctx context.Context, id string) (application.Session, error) {
	return application.Session{}, application.ErrNotFound
}

func (s *capturingSessionStore) ListSessions(ctx context.Context, workspaceID int64, from, to *time.Time) ([]application.Session, error) {
	return nil, nil
}

func TestServiceFactoryNewClaimService(t *testing.T) {
	host := NewUserFixture()
	role := NewRoleFixture(WithRoleID("role-host"))
	sessionType := NewSessionTypeFixture(WithHostingRoles(role.ID))
	schedule := NewScheduleFixture(
		WithScheduleSessionType(sessionType.ID),
		WithScheduleWeekdays(time.Monday),
		WithScheduleStart(18, 0),
	)

	factory := NewServiceFactory()
	store := &capturingSessionStore{}
	svc := factory.NewClaimService(ClaimServiceDeps{
		Schedules:    &fixtureScheduleDir{schedule: schedule.Application()},
		SessionTypes: &fixtureSessionTypeDir{sessionType: sessionType.Application()},
		Roles:        &fixtureRoleDir{roles: []application.Role{role.Application()}},
		Sessions:     store,
	})

	monday := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	result, err := svc.ClaimSession(context.Background(), application.ClaimSessionParams{
		Principal:   host.Principal(),
		WorkspaceID: schedule.WorkspaceID,
		ScheduleID:  schedule.ID,
		Date:        monday,
	})
	if err != nil {
		t.Fatalf("ClaimSession returned error: %v", err)
	}

	if result.Session.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", result.Session.ID)
	}
	if store.upserted.OwnerID == nil || *store.upserted.OwnerID != host.ID {
		t.Fatalf("store received unexpected owner: %v", store.upserted.OwnerID)
	}
	want := monday.Add(18 * time.Hour)
	if !result.Session.Date.Equal(want) {
		t.Fatalf("expected occurrence instant %v, got %v", want, result.Session.Date)
	}
	if result.Type.ID != sessionType.ID {
		t.Fatalf("expected session type %q, got %q", sessionType.ID, result.Type.ID)
	}
}
