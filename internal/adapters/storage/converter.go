package storage

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
)

func sessionToModel(s *domain.AttackSession) SessionModel {
	m := SessionModel{
		ID:                 s.ID,
		Interface:          s.Interface,
		Targets:            strings.Join(s.Targets, ","),
		Cap:                s.Cap,
		ScanSeconds:        int(s.ScanDuration / time.Second),
		ClientScanSeconds:  int(s.ClientScanDuration / time.Second),
		DeauthSeconds:      int(s.DeauthDuration / time.Second),
		ClientDeauthSeconds: int(s.ClientDeauthTime / time.Second),
		PacketCount:        s.PacketCount,
		Policy:             string(s.Policy),
		StartedAt:          s.StartedAt,
	}
	if !s.IsRunning() {
		now := time.Now()
		m.StoppedAt = &now
	}
	return m
}

func networkToModel(sessionID string, n domain.NetworkRecord, seen time.Time) NetworkModel {
	return NetworkModel{
		SessionID: sessionID,
		BSSID:     n.BSSID,
		ESSID:     n.ESSID,
		Channel:   n.Channel,
		Power:     n.Power,
		Hidden:    n.Hidden,
		SeenAt:    seen,
	}
}

func networkToDomain(m NetworkModel) domain.NetworkRecord {
	return domain.NetworkRecord{
		BSSID:   m.BSSID,
		Channel: m.Channel,
		ESSID:   m.ESSID,
		Power:   m.Power,
		Hidden:  m.Hidden,
	}
}

func attackToModel(sessionID string, a *domain.NetworkAttack) (AttackModel, error) {
	clients := make([]domain.ClientRecord, 0, len(a.Clients))
	for _, c := range a.Clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].MAC < clients[j].MAC })

	encoded, err := json.Marshal(clients)
	if err != nil {
		return AttackModel{}, err
	}
	return AttackModel{
		SessionID: sessionID,
		BSSID:     a.Network.BSSID,
		ESSID:     a.Network.ESSID,
		Channel:   a.Network.Channel,
		State:     string(a.State),
		Broadcast: a.Broadcast,
		Clients:   string(encoded),
		Error:     a.Error,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}, nil
}

func attackToDomain(m AttackModel) (*domain.NetworkAttack, error) {
	var clients []domain.ClientRecord
	if m.Clients != "" {
		if err := json.Unmarshal([]byte(m.Clients), &clients); err != nil {
			return nil, err
		}
	}
	a := &domain.NetworkAttack{
		Network:   domain.NetworkRecord{BSSID: m.BSSID, ESSID: m.ESSID, Channel: m.Channel},
		State:     domain.AttackState(m.State),
		Broadcast: m.Broadcast,
		Error:     m.Error,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
	}
	if len(clients) > 0 {
		a.Clients = make(map[string]domain.ClientRecord, len(clients))
		for _, c := range clients {
			a.Clients[c.MAC] = c
		}
	}
	return a, nil
}
