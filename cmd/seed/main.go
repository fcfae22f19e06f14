package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/db"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/SwiftSoko/SwiftSoko/internal/user"
	"github.com/SwiftSoko/SwiftSoko/internal/vehicle"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 初始化数据：车辆字典 + 管理员账号。可重复执行，已存在的记录跳过。

var (
	configPath    = flag.String("config", "configs/marketplace-service.json", "配置文件路径")
	adminEmail    = flag.String("admin-email", "admin@swiftsoko.local", "管理员邮箱")
	adminPassword = flag.String("admin-password", "", "管理员初始密码（必填）")
)

var catalog = map[vehicle.Kind][]string{
	vehicle.KindColor: {"white", "black", "silver", "red", "blue"},
	vehicle.KindMake:  {"Toyota", "Nissan", "Honda", "Isuzu"},
	vehicle.KindType:  {"saloon", "boda", "van", "truck"},
	vehicle.KindModel: {"Vitz", "Probox", "Note", "Fielder"},
}

func main() {
	flag.Parse()

	if *adminPassword == "" {
		panic("admin-password is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: "text", Output: "stdout"})
	if err != nil {
		panic(err)
	}

	gormDB, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect to mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&vehicle.Color{}, &vehicle.Make{}, &vehicle.Type{}, &vehicle.Model{},
	); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}

	seedCatalog(gormDB, log)
	seedAdmin(gormDB, log)
}

func seedCatalog(gormDB *gorm.DB, log logger.Logger) {
	ctx := context.Background()
	repo := vehicle.NewRepo(gormDB)
	for kind, names := range catalog {
		for _, name := range names {
			if _, err := repo.Add(ctx, kind, name, ""); err != nil {
				// 唯一索引冲突说明已存在，跳过
				log.Debugf("skip %s %q: %v", kind, name, err)
			} else {
				log.Infof("seeded %s %q", kind, name)
			}
		}
	}
}

func seedAdmin(gormDB *gorm.DB, log logger.Logger) {
	var existing user.User
	if err := gormDB.Where("email = ?", *adminEmail).First(&existing).Error; err == nil {
		log.Infof("admin %s already exists", *adminEmail)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}

	admin := user.User{
		ID:           uuid.NewString(),
		Email:        *adminEmail,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		Name:         "Administrator",
	}
	if err := gormDB.Create(&admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Infof("admin %s created", *adminEmail)
}
