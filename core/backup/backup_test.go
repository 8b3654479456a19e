package backup_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/reportcard/apps/di"
	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/backup"
	"github.com/trezcool/reportcard/core/comment"
	"github.com/trezcool/reportcard/core/settings"
	"github.com/trezcool/reportcard/core/student"
	emailsvc "github.com/trezcool/reportcard/services/email"
	"github.com/trezcool/reportcard/storage/kv/inmem"
	"github.com/trezcool/reportcard/tests"
)

func TestService_ExportImport(t *testing.T) {
	backup.NowFunc = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { backup.NowFunc = func() time.Time { return time.Now().UTC() } })

	c := testutil.NewContainer(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	testutil.CreateComment(t, c.Store.Comments, std.ID, "Amani works hard in class.", "positive", 1, []string{"effort"})

	data, err := c.BackupSvc.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Students, 1)
	assert.Len(t, data.Comments, 1)
	require.NotNil(t, data.Settings)
	assert.Equal(t, settings.Default(), *data.Settings)
	assert.Equal(t, backup.Version, data.Version)
	assert.Equal(t, "reportcard-backup-2024-06-15.json", data.Filename())

	// importing into another store
	other := testutil.NewContainer(t)
	testutil.CreateStudent(t, other.Store.Students, "Bea Ncube", 6, "B")
	require.NoError(t, other.BackupSvc.Import(ctx, data))

	students, err := other.StudentSvc.QueryAll(ctx)
	require.NoError(t, err)
	if assert.Len(t, students, 1) {
		assert.Equal(t, std.ID, students[0].ID)
	}
	comments, err := other.CommentSvc.ByStudent(ctx, std.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	// missing collections are left untouched
	dark := settings.Settings{Theme: settings.ThemeDark}
	require.NoError(t, other.BackupSvc.Import(ctx, backup.Data{Settings: &dark}))
	students, err = other.StudentSvc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
	s, err := other.SettingsSvc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.IsDark())

	err = other.BackupSvc.Import(ctx, backup.Data{Version: backup.Version})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, backup.ErrNothingToImport, verr.Err)
}

func TestService_Import_invalid(t *testing.T) {
	c := testutil.NewContainer(t)
	ctx := context.Background()
	stored := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")

	now := time.Now().UTC()
	amani := student.Student{ID: "s1", Name: "Amani Diallo", Grade: 5, Section: "A", CreatedAt: now, UpdatedAt: now}
	bea := student.Student{ID: "s2", Name: "Bea Ncube", Grade: 6, Section: "B", CreatedAt: now, UpdatedAt: now}
	cmt := comment.Comment{ID: "c1", StudentID: "s1", Content: "Amani works hard in class.", Tone: "positive", Period: 1, CreatedAt: now, UpdatedAt: now}

	tests := []struct {
		name       string
		data       backup.Data
		wantFields []string
	}{
		{
			name:       "invalid student",
			data:       backup.Data{Students: []student.Student{{ID: "x", Name: "", Grade: 42, Section: "Z"}}},
			wantFields: []string{"name", "grade", "section"},
		},
		{
			name: "invalid comment",
			data: backup.Data{
				Students: []student.Student{amani},
				Comments: []comment.Comment{{ID: "c1", StudentID: "s1", Content: "hi", Tone: "olumlu", Period: 9}},
			},
			wantFields: []string{"content", "tone", "period"},
		},
		{
			name:       "invalid settings",
			data:       backup.Data{Settings: &settings.Settings{Theme: "pink"}},
			wantFields: []string{"theme"},
		},
		{
			name:       "duplicate student ids",
			data:       backup.Data{Students: []student.Student{amani, {ID: "s1", Name: "Bea Ncube", Grade: 6, Section: "B"}}},
			wantFields: []string{"students[1].id"},
		},
		{
			name:       "duplicate comment ids",
			data:       backup.Data{Students: []student.Student{amani}, Comments: []comment.Comment{cmt, cmt}},
			wantFields: []string{"comments[1].id"},
		},
		{
			name:       "unknown student",
			data:       backup.Data{Students: []student.Student{bea}, Comments: []comment.Comment{cmt}},
			wantFields: []string{"comments[0].student_id"},
		},
		{
			name:       "unknown stored student",
			data:       backup.Data{Comments: []comment.Comment{cmt}},
			wantFields: []string{"comments[0].student_id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.BackupSvc.Import(ctx, tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, invalidFields(t, err))
		})
	}

	// nothing was written
	students, err := c.StudentSvc.QueryAll(ctx)
	require.NoError(t, err)
	if assert.Len(t, students, 1) {
		assert.Equal(t, stored.ID, students[0].ID)
	}
	comments, err := c.CommentSvc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// comments may refer to stored students
	cmt.StudentID = stored.ID
	require.NoError(t, c.BackupSvc.Import(ctx, backup.Data{Comments: []comment.Comment{cmt}}))
	comments, err = c.CommentSvc.ByStudent(ctx, stored.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

// invalidFields returns the invalid fields of a validation error, in order.
func invalidFields(t *testing.T, err error) []string {
	t.Helper()
	var flds []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			flds = append(flds, fe.Field())
		}
		return flds
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		assert.Equal(t, backup.ErrInvalidImport, verr.Err)
		for _, fe := range verr.Fields {
			flds = append(flds, fe.Field)
		}
		return flds
	}
	t.Fatalf("not a validation error: %v", err)
	return nil
}

func TestService_Clear(t *testing.T) {
	c := testutil.NewContainer(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")
	testutil.CreateComment(t, c.Store.Comments, std.ID, "Amani works hard in class.", "positive", 1, nil)
	_, err := c.SettingsSvc.ToggleTheme(ctx)
	require.NoError(t, err)

	require.NoError(t, c.BackupSvc.Clear(ctx))

	data, err := c.BackupSvc.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Students)
	assert.Empty(t, data.Comments)
	assert.Equal(t, settings.Default(), *data.Settings)

	_, err = c.StudentSvc.GetByID(ctx, std.ID)
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))
}

func TestService_Backup(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantMail bool
		wantErr  bool
	}{
		{name: "not mailed", email: ""},
		{name: "mailed", email: "Teacher <teacher@school.test>", wantMail: true},
		{name: "invalid email", email: "lol", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()
			conf := core.NewTestConfig()
			conf.Backup.Email = tt.email
			c, err := di.NewWithStore(context.Background(), conf, di.NewLogger(conf, "TEST : "), inmem.NewStore(conf.Storage.Prefix))
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })
			ctx := context.Background()
			testutil.CreateStudent(t, c.Store.Students, "Amani Diallo", 5, "A")

			data, err := c.BackupSvc.Backup(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				s, serr := c.SettingsSvc.Get(ctx)
				require.NoError(t, serr)
				assert.False(t, s.LastBackup.Valid)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, data.Settings)
			assert.True(t, data.Settings.LastBackup.Valid)

			s, err := c.SettingsSvc.Get(ctx)
			require.NoError(t, err)
			assert.True(t, s.LastBackup.Time.Equal(data.ExportDate))

			sent := emailsvc.SentMessages()
			if !tt.wantMail {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			msg := sent[0]
			assert.Equal(t, "teacher@school.test", msg.To[0].Address)
			assert.Contains(t, msg.TextContent, "Students: 1")
			require.Len(t, msg.Attachments, 1)
			assert.Equal(t, data.Filename(), msg.Attachments[0].Filename)
			assert.Equal(t, "application/json", msg.Attachments[0].ContentType)
		})
	}
}
