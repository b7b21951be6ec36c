package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	pkgerrors "CrewWatch/pkg/errors"
)

func TestStaffCreateAndGet(t *testing.T) {
	env := newTestEnv(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	svc := NewStaffService(env.repos, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateStaffRequest{
		EmployeeID:  "LP010",
		Name:        "A. Kumar",
		StaffType:   "LOCO_PILOT",
		Phone:       "+919800000001",
		HomeStation: "NDLS",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != model.StaffStatusAvailable {
		t.Errorf("status = %s, want AVAILABLE", created.Status)
	}
	if created.AutoCreated {
		t.Error("manually registered staff must not be flagged auto-created")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.EmployeeID != "LP010" {
		t.Errorf("employee id = %s", got.EmployeeID)
	}

	if _, err := svc.Get(ctx, created.ID+100); err != pkgerrors.StaffNotFound {
		t.Errorf("Get() missing error = %v, want STAFF_NOT_FOUND", err)
	}

	if _, err := svc.Create(ctx, &dto.CreateStaffRequest{
		EmployeeID: "LP011",
		Name:       "B. Singh",
		StaffType:  "LOCO_PILOT",
		Phone:      "12345",
	}); err != pkgerrors.InvalidPhone {
		t.Errorf("Create() with bad phone error = %v, want INVALID_PHONE", err)
	}
}

func TestStaffList(t *testing.T) {
	env := newTestEnv(time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC))
	svc := NewStaffService(env.repos, zap.NewNop())
	ctx := context.Background()

	for _, req := range []dto.CreateStaffRequest{
		{EmployeeID: "LP010", Name: "A. Kumar", StaffType: "LOCO_PILOT"},
		{EmployeeID: "LP011", Name: "B. Singh", StaffType: "LOCO_PILOT"},
		{EmployeeID: "TM010", Name: "C. Das", StaffType: "TRAIN_MANAGER"},
	} {
		r := req
		if _, err := svc.Create(ctx, &r); err != nil {
			t.Fatalf("Create(%s) error = %v", req.EmployeeID, err)
		}
	}

	pilots, total, err := svc.List(ctx, &dto.ListStaffQuery{StaffType: "LOCO_PILOT"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(pilots) != 2 {
		t.Errorf("pilots = %d (total %d), want 2", len(pilots), total)
	}

	all, total, err := svc.List(ctx, &dto.ListStaffQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("all staff = %d (total %d), want 3", len(all), total)
	}
}
