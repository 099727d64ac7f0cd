package geofence

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"natively/internal/domain/location"
)

const (
	msgListTitle        = "geofence.list.title"
	msgListBody         = "geofence.list.body"
	msgReservationTitle = "geofence.reservation.title"
	msgReservationBody  = "geofence.reservation.body"
	msgGenericTitle     = "geofence.generic.title"
	msgGenericBody      = "geofence.generic.body"
)

// Тип уведомления в данных для веб-страницы
const (
	KindList        = "list"
	KindReservation = "reservation"
	KindNearStore   = "near_store"
)

func init() {
	en := language.English
	_ = message.SetString(en, msgListTitle, "You're near %s")
	_ = message.SetString(en, msgListBody, "Don't forget your list \"%s\".")
	_ = message.SetString(en, msgReservationTitle, "Your reservation at %s")
	_ = message.SetString(en, msgReservationBody, "Reservation #%s is waiting for pickup.")
	_ = message.SetString(en, msgGenericTitle, "You're near %s")
	_ = message.SetString(en, msgGenericBody, "You're close to one of your saved stores.")

	ru := language.Russian
	_ = message.SetString(ru, msgListTitle, "Вы рядом с %s")
	_ = message.SetString(ru, msgListBody, "Не забудьте список «%s».")
	_ = message.SetString(ru, msgReservationTitle, "Ваш заказ в %s")
	_ = message.SetString(ru, msgReservationBody, "Заказ №%s ждет выдачи.")
	_ = message.SetString(ru, msgGenericTitle, "Вы рядом с %s")
	_ = message.SetString(ru, msgGenericBody, "Рядом один из ваших сохраненных магазинов.")
}

// Messages выбирает текст уведомления по приоритету: список, бронь, общий
type Messages struct {
	printer *message.Printer
}

func NewMessages(locale string) *Messages {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	matcher := language.NewMatcher([]language.Tag{language.English, language.Russian})
	matched, _, _ := matcher.Match(tag)
	base, _ := matched.Base()

	return &Messages{
		printer: message.NewPrinter(language.Make(base.String())),
	}
}

func (m *Messages) For(l location.StoreLocation) Notification {
	data := map[string]string{
		"storeId": l.ID,
	}

	var n Notification
	switch {
	case l.ListName != "":
		data["type"] = KindList
		if l.ListID != "" {
			data["listId"] = l.ListID
		}
		n = Notification{
			Title: m.printer.Sprintf(msgListTitle, l.Name),
			Body:  m.printer.Sprintf(msgListBody, l.ListName),
		}
	case l.ReservationNumber != "":
		data["type"] = KindReservation
		data["reservationNumber"] = l.ReservationNumber
		n = Notification{
			Title: m.printer.Sprintf(msgReservationTitle, l.Name),
			Body:  m.printer.Sprintf(msgReservationBody, l.ReservationNumber),
		}
	default:
		data["type"] = KindNearStore
		n = Notification{
			Title: m.printer.Sprintf(msgGenericTitle, l.Name),
			Body:  m.printer.Sprintf(msgGenericBody),
		}
	}

	n.Data = data
	return n
}
