package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/controllers"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth          *controllers.AuthController
	Profile       *controllers.ProfileController
	Academic      *controllers.AcademicController
	User          *controllers.UserController
	Attendance    *controllers.AttendanceController
	Result        *controllers.ResultController
	Communication *controllers.CommunicationController
	Notification  *controllers.NotificationController
	Health        *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", c.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/:role/login", c.Auth.Login)
		auth.POST("/:role/forgot-password", c.Auth.ForgotPassword)
		auth.POST("/:role/reset-password", c.Auth.ResetPassword)
	}

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.UserTypeAdmin)
	teacherOnly := authMiddleware.RoleRequired(models.UserTypeTeacher)
	studentOnly := authMiddleware.RoleRequired(models.UserTypeStudent)
	staff := authMiddleware.RoleRequired(models.UserTypeAdmin, models.UserTypeTeacher)

	// Profile
	me := authenticated.Group("/me")
	{
		me.GET("", c.Profile.Me)
		me.PUT("/password", c.Profile.ChangePassword)
		me.PUT("/photo", authMiddleware.RoleRequired(models.UserTypeTeacher, models.UserTypeStudent), c.Profile.UpdatePhoto)
		me.GET("/subjects", teacherOnly, c.Academic.MySubjects)
	}

	// Academic hierarchy: reads for everyone signed in, writes for admins
	departments := authenticated.Group("/departments")
	{
		departments.GET("", c.Academic.ListDepartments)
		departments.GET("/:id", c.Academic.GetDepartment)
		departments.POST("", adminOnly, c.Academic.CreateDepartment)
		departments.PUT("/:id", adminOnly, c.Academic.UpdateDepartment)
		departments.DELETE("/:id", adminOnly, c.Academic.DeleteDepartment)
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", c.Academic.ListCourses)
		courses.GET("/:id", c.Academic.GetCourse)
		courses.POST("", adminOnly, c.Academic.CreateCourse)
		courses.PUT("/:id", adminOnly, c.Academic.UpdateCourse)
		courses.DELETE("/:id", adminOnly, c.Academic.DeleteCourse)
	}

	semesters := authenticated.Group("/semesters")
	{
		semesters.GET("", c.Academic.ListSemesters)
		semesters.GET("/:id", c.Academic.GetSemester)
		semesters.POST("", adminOnly, c.Academic.CreateSemester)
		semesters.PUT("/:id", adminOnly, c.Academic.UpdateSemester)
		semesters.DELETE("/:id", adminOnly, c.Academic.DeleteSemester)
	}

	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", c.Academic.ListSubjects)
		subjects.GET("/:id", c.Academic.GetSubject)
		subjects.POST("", adminOnly, c.Academic.CreateSubject)
		subjects.PUT("/:id", adminOnly, c.Academic.UpdateSubject)
		subjects.DELETE("/:id", adminOnly, c.Academic.DeleteSubject)
	}

	assignments := authenticated.Group("/assignments")
	assignments.Use(adminOnly)
	{
		assignments.GET("", c.Academic.ListAssignments)
		assignments.POST("", c.Academic.AssignTeacher)
		assignments.DELETE("/:id", c.Academic.Unassign)
	}

	// Accounts
	admins := authenticated.Group("/admins")
	admins.Use(adminOnly)
	{
		admins.GET("", c.User.ListAdmins)
		admins.POST("", c.User.CreateAdmin)
	}

	teachers := authenticated.Group("/teachers")
	teachers.Use(adminOnly)
	{
		teachers.GET("", c.User.ListTeachers)
		teachers.POST("", c.User.CreateTeacher)
		teachers.GET("/:id", c.User.GetTeacher)
		teachers.PUT("/:id", c.User.UpdateTeacher)
		teachers.DELETE("/:id", c.User.DeleteTeacher)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", staff, c.User.ListStudents)
		students.GET("/:id", staff, c.User.GetStudent)
		students.POST("", adminOnly, c.User.CreateStudent)
		students.PUT("/:id", adminOnly, c.User.UpdateStudent)
		students.DELETE("/:id", adminOnly, c.User.DeleteStudent)
	}

	// Attendance
	attendance := authenticated.Group("/attendance")
	{
		attendance.POST("", teacherOnly, c.Attendance.Mark)
		attendance.POST("/bulk", teacherOnly, c.Attendance.MarkBulk)
		attendance.GET("", staff, c.Attendance.List)
		attendance.GET("/me", studentOnly, c.Attendance.ListOwn)
		attendance.PUT("/:id", staff, c.Attendance.Update)
		attendance.POST("/:id/check-editability", staff, c.Attendance.CheckEditability)
		attendance.GET("/summary/me", studentOnly, c.Attendance.MySummary)
		attendance.GET("/summary/students/:id", staff, c.Attendance.StudentSummary)
	}

	// Results
	results := authenticated.Group("/results")
	{
		results.PUT("", teacherOnly, c.Result.Save)
		results.GET("", staff, c.Result.List)
		results.GET("/me", studentOnly, c.Result.ListOwn)
		results.GET("/export", staff, c.Result.Export)
		results.POST("/import", teacherOnly, c.Result.Import)
		results.GET("/:id", c.Result.Get)
		results.POST("/:id/approve", adminOnly, c.Result.Approve)
		results.POST("/:id/publish", adminOnly, c.Result.Publish)
		results.POST("/:id/unpublish", adminOnly, c.Result.Unpublish)
	}

	// Events and announcements
	events := authenticated.Group("/events")
	{
		events.GET("", c.Communication.ListEvents)
		events.GET("/:id", c.Communication.GetEvent)
		events.POST("", adminOnly, c.Communication.CreateEvent)
		events.PUT("/:id", adminOnly, c.Communication.UpdateEvent)
		events.DELETE("/:id", adminOnly, c.Communication.DeleteEvent)
	}

	announcements := authenticated.Group("/announcements")
	{
		announcements.GET("", c.Communication.ListAnnouncements)
		announcements.GET("/:id", c.Communication.GetAnnouncement)
		announcements.POST("", adminOnly, c.Communication.CreateAnnouncement)
		announcements.PUT("/:id", adminOnly, c.Communication.UpdateAnnouncement)
		announcements.DELETE("/:id", adminOnly, c.Communication.DeleteAnnouncement)
	}

	// Notifications
	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notification.List)
		notifications.GET("/unread-count", c.Notification.UnreadCount)
		notifications.GET("/stream", c.Notification.Stream)
		notifications.POST("/read-all", c.Notification.MarkAllRead)
		notifications.POST("/:id/read", c.Notification.MarkRead)
		notifications.POST("", adminOnly, c.Notification.Send)
	}
}
