package service

import (
	"sync"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
)

type recorder struct {
	mu     sync.Mutex
	events map[uuid.UUID][]interface{}
}

func (r *recorder) Publish(tenantID uuid.UUID, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[uuid.UUID][]interface{})
	}
	r.events[tenantID] = append(r.events[tenantID], v)
}

func (r *recorder) count(tenantID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[tenantID])
}

func principal(u *model.User, tenant *model.Tenant) session.Principal {
	p := session.Principal{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.FullName,
		Role:         u.Role,
		TenantID:     u.TenantID,
		TokenVersion: u.TokenVersion,
	}
	if tenant != nil {
		p.TenantName = tenant.Name
		p.TenantStatus = tenant.Status
	}
	return p
}
