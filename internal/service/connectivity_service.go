package service

import (
	"context"
	"sync"
	"time"

	"lapsecam/internal/logger"
	"lapsecam/internal/metrics"
	"lapsecam/internal/network"
)

// Probe parameters from the device script: a TCP dial to a well-known
// resolver, 3s timeout, checked every 60s while online. While offline the
// re-probe interval doubles from 2s up to 60s.
const (
	DefaultProbeAddr = "8.8.8.8:53"

	probeTimeout     = 3 * time.Second
	checkInterval    = 60 * time.Second
	offlineBackoff   = 2 * time.Second
	offlineBackoffHi = 60 * time.Second
)

type ConnectivityService interface {
	OnlineChecker
	Start()
	Stop()
}

type connectivityService struct {
	clientFactory *network.ClientFactory
	probeAddr     string

	mu     sync.Mutex
	online bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewConnectivityService(clientFactory *network.ClientFactory, probeAddr string) ConnectivityService {
	if probeAddr == "" {
		probeAddr = DefaultProbeAddr
	}
	return &connectivityService{
		clientFactory: clientFactory,
		probeAddr:     probeAddr,
		online:        true, // assume online until the first probe says otherwise
		stopCh:        make(chan struct{}),
	}
}

func (s *connectivityService) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *connectivityService) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("connectivity watchdog started", "module", "service", "action", "probe", "resource", "network", "result", "ok", "addr", s.probeAddr)
}

func (s *connectivityService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	logger.Info("connectivity watchdog stopped", "module", "service", "action", "probe", "resource", "network", "result", "ok")
}

func (s *connectivityService) run() {
	defer s.wg.Done()

	s.probe()

	delay := s.nextDelay(offlineBackoff)
	for {
		timer := time.NewTimer(delay)
		select {
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		wasOnline := s.IsOnline()
		s.probe()

		if s.IsOnline() {
			if !wasOnline {
				logger.Info("network recovered", "module", "service", "action", "probe", "resource", "network", "result", "ok")
			}
			delay = checkInterval
		} else {
			if wasOnline {
				logger.Warn("network lost", "module", "service", "action", "probe", "resource", "network", "result", "failed")
				delay = offlineBackoff
			} else {
				delay = minDuration(delay*2, offlineBackoffHi)
			}
		}
	}
}

func (s *connectivityService) nextDelay(offline time.Duration) time.Duration {
	if s.IsOnline() {
		return checkInterval
	}
	return offline
}

func (s *connectivityService) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := s.clientFactory.Probe(ctx, s.probeAddr, probeTimeout)

	s.mu.Lock()
	s.online = err == nil
	s.mu.Unlock()

	if err == nil {
		metrics.Online.Set(1)
	} else {
		metrics.Online.Set(0)
		logger.Debug("connectivity probe failed", "module", "service", "action", "probe", "resource", "network", "result", "failed", "addr", s.probeAddr, "error", err)
	}
}
