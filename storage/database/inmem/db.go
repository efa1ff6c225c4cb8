package inmemdb

import (
	"sync"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core/entitlement"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
)

type (
	userTable struct {
		mutex   sync.RWMutex
		table   map[string]user.User // {id: user}
		byEmail map[string]string    // {email: id}
	}

	entitlementTable struct {
		mutex sync.RWMutex
		table map[string]*entitlement.Entitlement // {userID: grant}
	}

	DB struct {
		user        *userTable
		entitlement *entitlementTable
	}
)

func NewDB() *DB {
	return &DB{
		user:        &userTable{table: make(map[string]user.User), byEmail: make(map[string]string)},
		entitlement: &entitlementTable{table: make(map[string]*entitlement.Entitlement)},
	}
}
