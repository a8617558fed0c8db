package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/workforce-presence/internal/auth"
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	processDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/process"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	userDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/user"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	identityPostgres "github.com/frahmantamala/workforce-presence/internal/identity/postgres"
	"github.com/frahmantamala/workforce-presence/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample companies, employees, processes, station accounts and QR credentials.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.InitWithOptions(logger.Options{Env: cfg.Logging.Env, Level: cfg.Logging.Level, Format: cfg.Logging.Format})

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB, cfg.Logging.Env)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Existing data cleared")
		}

		if err := seed(context.Background(), db, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		fmt.Println("Seed completed. Every account uses the password:", seedPassword)
	},
}

func clearSeedData(db *gorm.DB) error {
	tables := []string{
		"attendance_logs",
		"work_sessions",
		"break_sessions",
		"qr_codes",
		"users",
		"employees",
		"processes",
		"companies",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int) error {
	companies := []companyDatamodel.Company{
		{CompanyCode: "ACME", Name: "Acme Manpower", EmployeeTypeAllowed: identity.CategoryManpower},
		{CompanyCode: "PLANT", Name: "Plant Permanent Staff", EmployeeTypeAllowed: identity.CategoryPermanent},
	}
	for i := range companies {
		if err := db.WithContext(ctx).Where("company_code = ?", companies[i].CompanyCode).FirstOrCreate(&companies[i]).Error; err != nil {
			return fmt.Errorf("seed company %s: %w", companies[i].CompanyCode, err)
		}
	}
	acme, plant := &companies[0], &companies[1]

	employees := []employeeDatamodel.Employee{
		{EmployeeCode: "EMP001", Name: "Andi", Category: identity.CategoryManpower, CompanyID: acme.ID, IsActive: true},
		{EmployeeCode: "EMP002", Name: "Budi", Category: identity.CategoryManpower, CompanyID: acme.ID, IsActive: true},
		{EmployeeCode: "EMP101", Name: "Citra", Category: identity.CategoryPermanent, CompanyID: plant.ID, IsActive: true},
	}
	for i := range employees {
		if err := db.WithContext(ctx).Where("employee_code = ?", employees[i].EmployeeCode).FirstOrCreate(&employees[i]).Error; err != nil {
			return fmt.Errorf("seed employee %s: %w", employees[i].EmployeeCode, err)
		}
	}

	processes := []processDatamodel.Process{
		{ProcessCode: "CUT", Name: "CUTTING"},
		{ProcessCode: "SEW", Name: "SEWING"},
		{ProcessCode: "PACK", Name: "PACKING"},
	}
	for i := range processes {
		if err := db.WithContext(ctx).Where("process_code = ?", processes[i].ProcessCode).FirstOrCreate(&processes[i]).Error; err != nil {
			return fmt.Errorf("seed process %s: %w", processes[i].ProcessCode, err)
		}
	}

	hash, err := auth.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	cuttingID := processes[0].ID
	users := []userDatamodel.User{
		{Username: "admin", Name: "Administrator", Role: auth.RoleAdmin},
		{Username: "supervisor", Name: "Line Supervisor", Role: auth.RoleSupervisor},
		{Username: "security", Name: "Gate Security", Role: auth.RoleSecurity},
		{Username: "cutting", Name: "Cutting Station", Role: auth.RoleProcess, ProcessID: &cuttingID},
	}
	for i := range users {
		users[i].PasswordHash = hash
		users[i].IsActive = true
		if err := db.WithContext(ctx).Where("username = ?", users[i].Username).FirstOrCreate(&users[i]).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].Username, err)
		}
	}

	issuer := identity.NewService(identityPostgres.NewIdentityRepository(db), logger.LoggerWrapper())
	for _, emp := range employees {
		cred, err := issuer.IssueForEmployee(ctx, emp.ID)
		if err != nil {
			return fmt.Errorf("issue credential for %s: %w", emp.EmployeeCode, err)
		}
		fmt.Printf("%s %s qrId=%s\n", emp.EmployeeCode, emp.Name, cred.QRID)
	}

	shared := qrDatamodel.QRCode{CompanyID: acme.ID, CompanyName: acme.Name, Category: identity.CategoryManpower}
	if err := db.WithContext(ctx).
		Where("company_id = ? AND employee_id IS NULL", acme.ID).
		FirstOrCreate(&shared).Error; err != nil {
		return fmt.Errorf("seed shared credential: %w", err)
	}
	fmt.Printf("shared %s credential qrId=%s\n", acme.CompanyCode, shared.QRID)

	return nil
}
