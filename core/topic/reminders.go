package topic

import (
	"net/mail"
	"sort"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/status"
)

type ReminderItem struct {
	Title       string
	DueDate     string
	StatusLabel string
}

// SendReminders scans all open topics and measures, classifies them and emails
// every owner/assignee holding at least one due-soon or overdue item. Returns
// the number of reminder emails sent.
func (svc *Service) SendReminders() (int, error) {
	topics, err := svc.repo.QueryAllTopics()
	if err != nil {
		return 0, err
	}
	measures, err := svc.repo.QueryAllMeasures()
	if err != nil {
		return 0, err
	}

	now := svc.nowFunc()
	rules := svc.rules.Rules()

	items := make(map[int][]ReminderItem)
	for _, t := range topics {
		if !t.OwnerID.Valid || t.Done() {
			continue
		}
		eff := t.EffectiveStatus(now, rules)
		if eff.Rank() < status.StatusDueSoon.Rank() {
			continue
		}
		item := ReminderItem{Title: t.Title, StatusLabel: eff.Label()}
		if t.DueDate.Valid {
			item.DueDate = t.DueDate.Time.Format("Jan 2, 2006")
		}
		items[t.OwnerID.Int] = append(items[t.OwnerID.Int], item)
	}
	for _, m := range measures {
		if !m.AssigneeID.Valid || m.Done() {
			continue
		}
		eff := m.EffectiveStatus(now, rules)
		if eff.Rank() < status.StatusDueSoon.Rank() {
			continue
		}
		item := ReminderItem{Title: m.Title, StatusLabel: eff.Label()}
		if m.DueDate.Valid {
			item.DueDate = m.DueDate.Time.Format("Jan 2, 2006")
		}
		items[m.AssigneeID.Int] = append(items[m.AssigneeID.Int], item)
	}

	userIDs := make([]int, 0, len(items))
	for id := range items {
		userIDs = append(userIDs, id)
	}
	sort.Ints(userIDs)

	var msgs []*core.EmailMessage
	for _, id := range userIDs {
		usr, err := svc.users.GetByID(id)
		if err != nil || !usr.IsActive || usr.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Deadline reminder",
			TemplateName: "deadline-reminder",
			TemplateData: struct {
				Name  string
				Items []ReminderItem
			}{Name: usr.Name, Items: items[id]},
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	return len(msgs), nil
}
