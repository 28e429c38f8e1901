package approval_controller

import (
	"context"

	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/slot_models"
	"github.com/joy095/roombooking/models/user_models"
	"github.com/joy095/roombooking/utils/mail"
)

// MailNotifier emails the booking owner when an approver or the owner
// changes the booking's status. It does nothing unless SMTP is configured.
type MailNotifier struct {
	users *user_models.Store
	rooms *room_models.Store
	slots *slot_models.Store
}

func NewMailNotifier(users *user_models.Store, rooms *room_models.Store, slots *slot_models.Store) *MailNotifier {
	return &MailNotifier{users: users, rooms: rooms, slots: slots}
}

func (n *MailNotifier) BookingStatusChanged(ctx context.Context, b *booking_models.Booking, action string) {
	if !mail.Enabled() {
		return
	}

	user, err := n.users.GetUserByID(ctx, b.UserID)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping status mail for booking %s: %v", b.ID, err)
		return
	}
	room, err := n.rooms.GetRoomByID(ctx, b.RoomID)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping status mail for booking %s: %v", b.ID, err)
		return
	}
	slot, err := n.slots.GetTimeSlotByID(ctx, b.SlotID)
	if err != nil {
		logger.WarnLogger.Warnf("Skipping status mail for booking %s: %v", b.ID, err)
		return
	}

	verbs := map[string]string{"approve": "approved", "reject": "rejected", "cancel": "cancelled"}
	verb := verbs[action]
	if verb == "" {
		verb = action
	}

	data := mail.BookingStatusData{
		Username: user.Username,
		RoomName: room.Name,
		SlotName: slot.Name + " (" + slot.StartTime + " - " + slot.EndTime + ")",
		Date:     b.BookingDate.Format("2006-01-02"),
		Action:   verb,
	}
	if b.RejectReason != nil {
		data.Reason = *b.RejectReason
	}

	if err := mail.SendBookingStatusEmail(user.Email, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to send status mail for booking %s: %v", b.ID, err)
	}
}
