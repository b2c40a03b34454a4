package service

import (
	"errors"
	"testing"

	"github.com/edupulse/class-service/internal/identity"
	"github.com/edupulse/class-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClass(t *testing.T) {
	f := newFixture(t)

	c, err := f.classes.CreateClass(t.Context(), algebraRequest(), lecturer)
	require.NoError(t, err)

	assert.NotZero(t, c.ID)
	assert.Equal(t, "Algebra I", c.Name)
	assert.Equal(t, model.ClassStatusActive, c.Status)
	assert.Equal(t, lecturerID, c.LecturerID)
	assert.Equal(t, "Dr. Ada Byron", c.LecturerName)
	assert.Equal(t, "Grade 5", c.GradeName)
	assert.Equal(t, "2026-01-10", c.StartDate)
	assert.Equal(t, "2026-06-30", c.EndDate)
	assert.Equal(t, 0, c.LectureCount)
}

func TestCreateClassRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.ClassRequest)
		actor   model.Principal
		wantErr error
		kind    error
	}{
		{
			name:    "start after end",
			mutate:  func(r *model.ClassRequest) { r.StartDate, r.EndDate = "2026-07-01", "2026-06-30" },
			actor:   lecturer,
			wantErr: ErrInvalidDateRange,
			kind:    ErrValidation,
		},
		{
			name:    "malformed date",
			mutate:  func(r *model.ClassRequest) { r.StartDate = "10/01/2026" },
			actor:   lecturer,
			wantErr: ErrInvalidDate,
			kind:    ErrValidation,
		},
		{
			name:    "blank name",
			mutate:  func(r *model.ClassRequest) { r.Name = "   " },
			actor:   lecturer,
			wantErr: ErrNameRequired,
			kind:    ErrValidation,
		},
		{
			name:    "actor is a student",
			mutate:  func(*model.ClassRequest) {},
			actor:   student,
			wantErr: ErrLecturerInvalid,
			kind:    ErrUnauthorized,
		},
		{
			name:    "actor unknown",
			mutate:  func(*model.ClassRequest) {},
			actor:   model.Principal{UserID: 999, Role: model.RoleLecturer},
			wantErr: ErrLecturerInvalid,
			kind:    ErrUnauthorized,
		},
		{
			name:    "no actor",
			mutate:  func(*model.ClassRequest) {},
			actor:   model.Principal{},
			wantErr: ErrPrincipalRequired,
			kind:    ErrUnauthorized,
		},
		{
			name:    "unknown grade",
			mutate:  func(r *model.ClassRequest) { r.GradeID = 77 },
			actor:   lecturer,
			wantErr: ErrGradeNotFound,
			kind:    ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := algebraRequest()
			tt.mutate(&req)

			_, err := f.classes.CreateClass(t.Context(), req, tt.actor)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.kind)
			assert.Zero(t, f.store.Writes())
		})
	}
}

func TestCreateClassIdentityUnavailable(t *testing.T) {
	f := newFixture(t)
	f.resolver.Fail(identity.ErrUnavailable)

	_, err := f.classes.CreateClass(t.Context(), algebraRequest(), lecturer)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Zero(t, f.store.Writes())
}

func TestUpdateClass(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)

	req := algebraRequest()
	req.Name = "Algebra II"
	req.GradeID = otherGradeID

	updated, err := f.classes.UpdateClass(t.Context(), created.ID, req, lecturer)
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", updated.Name)
	assert.Equal(t, "Grade 6", updated.GradeName)
	assert.Equal(t, model.ClassStatusActive, updated.Status)
}

func TestUpdateClassByNonOwner(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)

	req := algebraRequest()
	req.Name = "Hijacked"

	for _, actor := range []model.Principal{otherLecturer, admin} {
		_, err := f.classes.UpdateClass(t.Context(), created.ID, req, actor)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotClassOwner)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}

	stored, err := f.classes.GetClassByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algebra I", stored.Name)
}

func TestUpdateClassRevalidatesGrade(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)
	writes := f.store.Writes()

	req := algebraRequest()
	req.GradeID = 404

	_, err := f.classes.UpdateClass(t.Context(), created.ID, req, lecturer)
	assert.ErrorIs(t, err, ErrGradeNotFound)
	assert.Equal(t, writes, f.store.Writes())
}

func TestUpdateClassNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.classes.UpdateClass(t.Context(), 12345, algebraRequest(), lecturer)
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveAndRestoreClass(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)

	require.NoError(t, f.classes.DeleteClass(t.Context(), created.ID, lecturer))

	got, err := f.classes.GetClassByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClassStatusArchived, got.Status)

	// archiving twice is a no-op
	require.NoError(t, f.classes.DeleteClass(t.Context(), created.ID, lecturer))

	restored, err := f.classes.RestoreClass(t.Context(), created.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, model.ClassStatusActive, restored.Status)

	_, err = f.classes.RestoreClass(t.Context(), created.ID, lecturer)
	assert.ErrorIs(t, err, ErrClassNotArchived)
}

func TestDeleteClassByNonOwner(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)

	err := f.classes.DeleteClass(t.Context(), created.ID, otherLecturer)
	assert.ErrorIs(t, err, ErrNotClassOwner)

	require.NoError(t, f.classes.DeleteClass(t.Context(), created.ID, admin))
}

func TestArchivedClassKeepsLectures(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)
	f.mustScheduleLecture(t, created.ID)

	require.NoError(t, f.classes.DeleteClass(t.Context(), created.ID, lecturer))

	lectures, err := f.lectures.GetLecturesByClass(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, lectures, 1)

	got, err := f.classes.GetClassByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LectureCount)
}

func TestGetClassDegradesWhenIdentityDown(t *testing.T) {
	f := newFixture(t)
	created := f.mustCreateClass(t)
	f.resolver.Fail(errors.Join(identity.ErrUnavailable, errors.New("connection refused")))

	got, err := f.classes.GetClassByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, UnknownGrade, got.GradeName)
	assert.Equal(t, UnknownLecturer, got.LecturerName)
	assert.Equal(t, "Algebra I", got.Name)
}

func TestListClassesResolvesEachIDOnce(t *testing.T) {
	f := newFixture(t)
	for range 5 {
		f.mustCreateClass(t)
	}
	before := f.resolver.Calls()

	classes, err := f.classes.GetAllClasses(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, classes, 5)
	for _, c := range classes {
		assert.Equal(t, "Grade 5", c.GradeName)
		assert.Equal(t, "Dr. Ada Byron", c.LecturerName)
	}
	// one grade and one lecturer lookup for the whole list
	assert.Equal(t, int64(2), f.resolver.Calls()-before)
}

func TestListClassesFilters(t *testing.T) {
	f := newFixture(t)
	first := f.mustCreateClass(t)
	f.mustCreateClass(t)

	req := algebraRequest()
	req.GradeID = otherGradeID
	_, err := f.classes.CreateClass(t.Context(), req, lecturer)
	require.NoError(t, err)

	require.NoError(t, f.classes.DeleteClass(t.Context(), first.ID, lecturer))

	byGrade, err := f.classes.GetClassesByGrade(t.Context(), gradeID, "")
	require.NoError(t, err)
	assert.Len(t, byGrade, 2)

	active, err := f.classes.GetClassesByGrade(t.Context(), gradeID, "active")
	require.NoError(t, err)
	assert.Len(t, active, 1)

	archived, err := f.classes.GetAllClasses(t.Context(), "ARCHIVED")
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, first.ID, archived[0].ID)

	_, err = f.classes.GetAllClasses(t.Context(), "deleted")
	assert.ErrorIs(t, err, ErrInvalidClassStatus)

	empty, err := f.classes.GetClassesByGrade(t.Context(), 999, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetClassesByLecturer(t *testing.T) {
	f := newFixture(t)
	f.mustCreateClass(t)

	mine, err := f.classes.GetClassesByLecturer(t.Context(), lecturerID, lecturer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.classes.GetClassesByLecturer(t.Context(), lecturerID, otherLecturer)
	assert.ErrorIs(t, err, ErrForeignLecturer)

	viaAdmin, err := f.classes.GetClassesByLecturer(t.Context(), lecturerID, admin)
	require.NoError(t, err)
	assert.Len(t, viaAdmin, 1)
}
