package routes

import (
	"gymplan/internal/controllers"
	"gymplan/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterWorkoutRoutes(router *gin.Engine, workoutController *controllers.WorkoutController) {
	workoutRoutes := router.Group("/workouts")
	workoutRoutes.Use(middleware.AuthMiddleware())
	{
		workoutRoutes.POST("/", workoutController.CreateWorkout)
		workoutRoutes.GET("/", workoutController.GetWorkouts)
		workoutRoutes.GET("/day/:day", workoutController.GetWorkoutsByDay)
		workoutRoutes.PUT("/:id", workoutController.UpdateWorkout)
		workoutRoutes.DELETE("/:id", workoutController.DeleteWorkout)
		workoutRoutes.DELETE("/", workoutController.DeleteAllWorkouts)
		workoutRoutes.POST("/refresh", workoutController.RefreshWorkouts)
	}
}
