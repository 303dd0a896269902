// Package testutil holds fixtures shared by the API & portal tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/nacos/client/navigation"
	"github.com/trezcool/nacos/core/complaint"
	"github.com/trezcool/nacos/core/user"
)

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	if roles == nil {
		roles = []string{user.RoleStudent}
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateComplaint(
	t *testing.T,
	repo complaint.Repository,
	subject, category string,
	status complaint.Status,
	createdAt ...time.Time,
) complaint.Complaint {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	c, err := repo.CreateComplaint(context.Background(), complaint.Complaint{
		StudentName:  "Adaobi Okafor",
		MatricNumber: "CSC/2021/042",
		Email:        "adaobi@unn.edu.ng",
		Department:   "Computer Science",
		Level:        "300",
		Category:     category,
		Subject:      subject,
		Description:  subject + ": details",
		Status:       status,
		CreatedAt:    tstamp,
		UpdatedAt:    tstamp,
	})
	if err != nil {
		t.Fatalf("createComplaint() failed: %v", err)
	}
	return c
}

// FakeClock only moves when Advance is called. Due timers fire synchronously inside Advance.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

var _ navigation.Clock = (*FakeClock)(nil)

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) navigation.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	pending := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.done:
		case !t.at.After(c.now):
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// PendingTimers counts the timers that neither fired nor were stopped.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock *FakeClock
	at    time.Time
	f     func()
	done  bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
