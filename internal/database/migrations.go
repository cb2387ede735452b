package database

import (
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.Card{},
		&models.Door{},
		&models.Permission{},
		&models.CardPermission{},
		&models.AccessLog{},
	)
}

// SeedData populates a default department, administrator account, and a
// baseline around-the-clock permission so a fresh install is usable.
func SeedData(db *gorm.DB) error {
	department := models.Department{
		BaseModel:   models.BaseModel{ID: "default"},
		Name:        "General",
		Description: "Default department",
		IsActive:    true,
	}
	if err := db.Where(models.Department{BaseModel: models.BaseModel{ID: department.ID}}).
		Attrs(department).FirstOrCreate(&models.Department{}).Error; err != nil {
		return err
	}

	departmentID := department.ID
	admin := models.User{
		BaseModel:    models.BaseModel{ID: "admin"},
		Username:     "admin",
		FullName:     "Administrator",
		Email:        "admin@example.com",
		EmployeeID:   "EMP-0001",
		Role:         models.RoleAdmin,
		IsActive:     true,
		DepartmentID: &departmentID,
	}
	if err := db.Where(models.User{Username: admin.Username}).
		Attrs(admin).FirstOrCreate(&models.User{}).Error; err != nil {
		return err
	}

	allDoors := models.Permission{
		BaseModel:      models.BaseModel{ID: "all-doors"},
		Name:           "All Doors 24/7",
		Description:    "Unrestricted access to every door",
		DoorAccessMode: models.DoorAccessAll,
		Priority:       0,
		IsActive:       true,
	}
	if err := db.Where(models.Permission{Name: allDoors.Name}).
		Attrs(allDoors).FirstOrCreate(&models.Permission{}).Error; err != nil {
		return err
	}

	officeHours := models.Permission{
		BaseModel:      models.BaseModel{ID: "office-hours"},
		Name:           "Office Hours",
		Description:    "Weekday business-hours access to assigned doors",
		DoorAccessMode: models.DoorAccessSpecific,
		TimeRestriction: &models.TimeRestriction{
			Days:      []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			StartTime: "08:00",
			EndTime:   "18:00",
		},
		Priority: 50,
		IsActive: true,
	}
	if err := db.Where(models.Permission{Name: officeHours.Name}).
		Attrs(officeHours).FirstOrCreate(&models.Permission{}).Error; err != nil {
		return err
	}

	return nil
}
