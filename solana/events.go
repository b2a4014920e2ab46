package solana

import "github.com/AlexZinkM/bundlr-wallet/internal/model"

// Events returns up to limit recent batch notifications, newest first.
func (s *Service) Events(limit int) *model.EventsResponse {
	resp := &model.EventsResponse{Events: []model.EventView{}}
	if s.events == nil {
		return resp
	}

	for _, ev := range s.events.Recent(limit) {
		v := model.EventView{
			Type:       string(ev.Type),
			BatchID:    ev.BatchID,
			Kind:       string(ev.Kind),
			Target:     ev.Target,
			WalletID:   ev.WalletID,
			WalletName: ev.WalletName,
			TxID:       ev.TxID,
			Error:      ev.Error,
			Total:      ev.Total,
			Successes:  ev.Successes,
			Failures:   ev.Failures,
			Cancelled:  ev.Cancelled,
			Time:       ev.Time,
		}
		if !ev.Amount.IsZero() {
			v.Amount = ev.Amount.String()
		}
		resp.Events = append(resp.Events, v)
	}
	resp.Total = s.events.Total()
	return resp
}
