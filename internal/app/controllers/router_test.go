package controllers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/seed"
)

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.HealthResponse{Status: "ok", Database: "memory"}, decode[dto.HealthResponse](t, rec))
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	t.Run("each role", func(t *testing.T) {
		cases := []struct {
			role     models.UserType
			email    string
			password string
		}{
			{models.UserTypeAdmin, seed.AdminEmail, seed.AdminPassword},
			{models.UserTypeTeacher, seed.TeacherEmail, seed.TeacherPassword},
			{models.UserTypeStudent, seed.StudentEmail, seed.StudentPassword},
		}
		for _, tc := range cases {
			rec := h.do(http.MethodPost, "/api/v1/auth/"+tc.role.Slug()+"/login", "", dto.LoginRequest{Email: tc.email, Password: tc.password})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[dto.LoginResponse](t, rec)
			assert.Equal(t, tc.role, resp.UserType)
			assert.Equal(t, "Bearer", resp.TokenType)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/admin/login", "", dto.LoginRequest{Email: seed.AdminEmail, Password: "nope-nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
	})

	t.Run("account of another role", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/teacher/login", "", dto.LoginRequest{Email: seed.StudentEmail, Password: seed.StudentPassword})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/student/login", "", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid data"}`, rec.Body.String())
	})

	t.Run("unknown role", func(t *testing.T) {
		rec := h.do(http.MethodPost, "/api/v1/auth/janitor/login", "", dto.LoginRequest{Email: seed.AdminEmail, Password: seed.AdminPassword})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/auth/student/login", "", dto.LoginRequest{Email: seed.StudentEmail, Password: seed.StudentPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[dto.LoginResponse](t, rec)

	rec = h.do(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refreshed := decode[dto.LoginResponse](t, rec)
	assert.Equal(t, models.UserTypeStudent, refreshed.UserType)

	rec = h.do(http.MethodGet, "/api/v1/me", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/auth/student/forgot-password", "", dto.ForgotPasswordRequest{Email: "ghost@sims.edu"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.mailer.links)

	rec = h.do(http.MethodPost, "/api/v1/auth/student/forgot-password", "", dto.ForgotPasswordRequest{Email: seed.StudentEmail})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.mailer.links, 1)
	assert.Contains(t, h.mailer.links[0], "http://frontend.test")

	rec = h.do(http.MethodPost, "/api/v1/auth/student/reset-password", "", dto.ResetPasswordRequest{Token: "not-a-token", NewPassword: "brand-new"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthorization(t *testing.T) {
	h := newHarness(t)
	student := h.studentToken()
	admin := h.adminToken()

	rec := h.do(http.MethodGet, "/api/v1/departments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/departments", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/departments", student, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := dto.DepartmentRequest{Name: "Mechanical Engineering", Code: "ME"}
	rec = h.do(http.MethodPost, "/api/v1/departments", student, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/departments", admin, body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/v1/departments", admin, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/students", student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/departments/9999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/departments/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	student := h.studentToken()

	rec := h.do(http.MethodGet, "/api/v1/me", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "STUDENT", me["user_type"])

	rec = h.do(http.MethodPut, "/api/v1/me/password", student, dto.ChangePasswordRequest{CurrentPassword: "wrong-one", NewPassword: "student456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPut, "/api/v1/me/password", student, dto.ChangePasswordRequest{CurrentPassword: seed.StudentPassword, NewPassword: "student456"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	h.login(models.UserTypeStudent, seed.StudentEmail, "student456")

	rec = h.upload(http.MethodPut, "/api/v1/me/photo", student, "photo", "me.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.upload(http.MethodPut, "/api/v1/me/photo", student, "photo", "me.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	photo := decode[map[string]string](t, rec)
	assert.Contains(t, photo["profile_photo"], "me.png")

	rec = h.upload(http.MethodPut, "/api/v1/me/photo", h.adminToken(), "photo", "me.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeacherSubjects(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/me/subjects", h.teacherToken(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subjects := decode[[]map[string]interface{}](t, rec)
	assert.Len(t, subjects, 3)

	rec = h.do(http.MethodGet, "/api/v1/me/subjects", h.studentToken(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAttendanceEditWindow(t *testing.T) {
	h := newHarness(t)
	teacher := h.teacherToken()
	student := h.demoStudent()
	subject := h.subjectByCode("CS301")

	mark := dto.MarkAttendanceRequest{
		StudentID:   student.ID,
		SubjectID:   subject.ID,
		Date:        "2024-09-02",
		LectureTime: "14:00",
		Status:      "PRESENT",
	}
	rec := h.do(http.MethodPost, "/api/v1/attendance", teacher, mark)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[dto.AttendanceResponse](t, rec)
	assert.True(t, record.IsEditable)

	rec = h.do(http.MethodPost, "/api/v1/attendance", teacher, mark)
	assert.Equal(t, http.StatusConflict, rec.Code)

	path := fmt.Sprintf("/api/v1/attendance/%d", record.ID)
	rec = h.do(http.MethodPost, path+"/check-editability", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.EditabilityResponse](t, rec).IsEditable)

	rec = h.do(http.MethodPut, path, teacher, dto.UpdateAttendanceRequest{Status: "ABSENT"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ABSENT", decode[dto.AttendanceResponse](t, rec).Status)

	h.clock.Advance(25 * time.Hour)

	rec = h.do(http.MethodPost, path+"/check-editability", teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[dto.EditabilityResponse](t, rec).IsEditable)

	rec = h.do(http.MethodPut, path, teacher, dto.UpdateAttendanceRequest{Status: "PRESENT"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAttendanceScoping(t *testing.T) {
	h := newHarness(t)
	teacher := h.teacherToken()
	student := h.demoStudent()

	unassigned := h.subjectByCode("CS304")
	rec := h.do(http.MethodPost, "/api/v1/attendance", teacher, dto.MarkAttendanceRequest{
		StudentID:   student.ID,
		SubjectID:   unassigned.ID,
		Date:        "2024-09-02",
		LectureTime: "14:00",
		Status:      "PRESENT",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodPost, "/api/v1/attendance", teacher, dto.MarkAttendanceRequest{
		StudentID:   student.ID,
		SubjectID:   unassigned.ID,
		Date:        "02/09/2024",
		LectureTime: "14:00",
		Status:      "PRESENT",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := h.studentToken()
	rec = h.do(http.MethodGet, "/api/v1/attendance/me?size=100", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[page[dto.AttendanceResponse]](t, rec)
	require.NotEmpty(t, own.Items)
	for _, a := range own.Items {
		assert.Equal(t, student.ID, a.StudentID)
	}

	rec = h.do(http.MethodGet, "/api/v1/attendance/summary/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[dto.AttendanceSummaryResponse](t, rec)
	assert.Equal(t, student.ID, summary.StudentID)
	assert.Positive(t, summary.Total)
	assert.Less(t, summary.Present, summary.Total)

	rec = h.do(http.MethodGet, "/api/v1/attendance", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResultLifecycle(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	teacher := h.teacherToken()
	subject := h.subjectByCode("CS301")

	rec := h.do(http.MethodPost, "/api/v1/students", admin, dto.CreateStudentRequest{
		Email:          "riya@sims.edu",
		Password:       "riya1234",
		FullName:       "Riya Sharma",
		RollNumber:     "CS2021002",
		EnrollmentYear: 2021,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	newStudent := decode[dto.StudentResponse](t, rec)

	internal, external := 22.0, 51.0
	save := dto.SaveResultRequest{StudentID: newStudent.ID, SubjectID: subject.ID, InternalMarks: &internal, ExternalMarks: &external}
	rec = h.do(http.MethodPut, "/api/v1/results", teacher, save)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[dto.ResultResponse](t, rec)
	assert.InDelta(t, 73.0, result.TotalMarks, 0.001)
	assert.Equal(t, "B+", result.Grade)

	external = 55
	rec = h.do(http.MethodPut, "/api/v1/results", teacher, save)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 77.0, decode[dto.ResultResponse](t, rec).TotalMarks, 0.001)

	path := fmt.Sprintf("/api/v1/results/%d", result.ID)
	rec = h.do(http.MethodPost, path+"/publish", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodPost, path+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[dto.ResultResponse](t, rec).IsApproved)

	rec = h.do(http.MethodPost, path+"/publish", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[dto.ResultResponse](t, rec).IsPublished)

	rec = h.do(http.MethodPut, "/api/v1/results", teacher, save)
	assert.Equal(t, http.StatusConflict, rec.Code)

	student := h.login(models.UserTypeStudent, "riya@sims.edu", "riya1234")
	rec = h.do(http.MethodGet, "/api/v1/results/me", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[page[dto.ResultResponse]](t, rec)
	require.Len(t, own.Items, 1)
	assert.Equal(t, result.ID, own.Items[0].ID)

	rec = h.do(http.MethodGet, "/api/v1/notifications/unread-count", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[dto.CountResponse](t, rec).Count)

	rec = h.do(http.MethodPost, path+"/unpublish", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, path, student, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultExport(t *testing.T) {
	h := newHarness(t)
	subject := h.subjectByCode("CS301")

	rec := h.do(http.MethodGet, fmt.Sprintf("/api/v1/results/export?subject_id=%d", subject.ID), h.teacherToken(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "results_cs301.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())

	rec = h.do(http.MethodGet, "/api/v1/results/export", h.teacherToken(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultImport(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	subject := h.subjectByCode("CS302")

	rec := h.do(http.MethodPost, "/api/v1/students", admin, dto.CreateStudentRequest{
		Email:          "arjun@sims.edu",
		Password:       "arjun1234",
		FullName:       "Arjun Mehta",
		RollNumber:     "CS2021003",
		EnrollmentYear: 2021,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"roll_number", "internal_marks", "external_marks", "remarks"},
		{"CS2021003", 20, 48, "steady"},
		{"UNKNOWN", 10, 10, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	path := fmt.Sprintf("/api/v1/results/import?subject_id=%d", subject.ID)
	xlsx := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	rec = h.upload(http.MethodPost, path, h.teacherToken(), "file", "marks.xlsx", xlsx, buf.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[dto.ImportReport](t, rec)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "UNKNOWN", report.Errors[0].RollNumber)

	rec = h.upload(http.MethodPost, path, h.studentToken(), "file", "marks.xlsx", xlsx, buf.Bytes())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventVisibility(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()

	rec := h.do(http.MethodPost, "/api/v1/events", admin, dto.EventRequest{
		Title:       "Faculty Meeting",
		Description: "Curriculum review",
		EventDate:   "2024-09-10",
		Category:    "ACADEMIC",
		Visibility:  "TEACHERS_ONLY",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[dto.EventResponse](t, rec)
	path := fmt.Sprintf("/api/v1/events/%d", event.ID)

	student := h.studentToken()
	rec = h.do(http.MethodGet, "/api/v1/events", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, e := range decode[page[dto.EventResponse]](t, rec).Items {
		assert.NotEqual(t, event.ID, e.ID)
	}
	rec = h.do(http.MethodGet, path, student, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	teacher := h.teacherToken()
	rec = h.do(http.MethodGet, path, teacher, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/events?category=PARTY", teacher, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAnnouncementsPinnedFirst(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()

	rec := h.do(http.MethodPost, "/api/v1/announcements", admin, dto.AnnouncementRequest{
		Title:   "Library hours",
		Content: "Open until 22:00 during exams",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/v1/announcements", h.studentToken(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[page[dto.AnnouncementResponse]](t, rec)
	require.Len(t, list.Items, 2)
	assert.True(t, list.Items[0].IsPinned)
	assert.Equal(t, "GENERAL", list.Items[1].AnnouncementType)
}

func TestNotifications(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	student := h.demoStudent()

	send := dto.SendNotificationRequest{
		RecipientType: "STUDENT",
		RecipientID:   student.ID,
		Title:         "Fee reminder",
		Message:       "Semester fee is due Friday",
	}
	rec := h.do(http.MethodPost, "/api/v1/notifications", admin, send)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = h.do(http.MethodPost, "/api/v1/notifications", admin, send)
	require.Equal(t, http.StatusCreated, rec.Code)

	token := h.studentToken()
	rec = h.do(http.MethodPost, "/api/v1/notifications", token, send)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/notifications?unread=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[page[dto.NotificationResponse]](t, rec)
	require.Len(t, list.Items, 2)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", list.Items[0].ID), h.teacherToken(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", list.Items[0].ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/v1/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[dto.CountResponse](t, rec).Count)

	rec = h.do(http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[dto.CountResponse](t, rec).Count)
}
