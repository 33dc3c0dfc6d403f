package testutil

import (
	"context"
	"fmt"
	"sync"

	"nestaway/internal/models"
	"nestaway/internal/storage"
)

// StorageStub records uploads in memory.
type StorageStub struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Keys    []string
	// Err, when set, fails every Put.
	Err error
}

func NewStorageStub() *StorageStub {
	return &StorageStub{Objects: make(map[string][]byte)}
}

func (s *StorageStub) Put(_ context.Context, key, _ string, data []byte) (storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return storage.Object{}, s.Err
	}
	s.Objects[key] = data
	s.Keys = append(s.Keys, key)
	return storage.Object{URL: "https://cdn.test/" + key, ID: key}, nil
}

// Uploads is the number of successful Put calls.
func (s *StorageStub) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Keys)
}

// SenderStub captures verification codes instead of mailing them.
type SenderStub struct {
	mu    sync.Mutex
	codes map[string][]string
	Err   error
}

func NewSenderStub() *SenderStub {
	return &SenderStub{codes: make(map[string][]string)}
}

func (s *SenderStub) SendVerificationCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.codes[email] = append(s.codes[email], code)
	return nil
}

// LastCode returns the most recent code sent to email.
func (s *SenderStub) LastCode(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := s.codes[email]
	if len(codes) == 0 {
		return "", fmt.Errorf("no code sent to %s", email)
	}
	return codes[len(codes)-1], nil
}

// Sent is the number of codes sent to email.
func (s *SenderStub) Sent(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes[email])
}

// PublisherStub records listing events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []*models.Property
	Err    error
}

func (p *PublisherStub) PublishListingCreated(_ context.Context, property *models.Property) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, property)
	return nil
}

// Count is the number of recorded events.
func (p *PublisherStub) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}
