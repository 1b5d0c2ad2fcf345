package datastore

import (
	"github.com/soundguard/soundguard-go/internal/errors"
)

// SaveNotification inserts a new per-user notification.
func (ds *DataStore) SaveNotification(notification *Notification) error {
	if err := ds.DB.Create(notification).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_notification").
			Context("user_id", notification.UserID).
			Build()
	}
	return nil
}

// GetUserNotifications returns a user's notifications, newest first.
func (ds *DataStore) GetUserNotifications(userID string) ([]Notification, error) {
	var notifications []Notification
	err := ds.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_user_notifications").
			Build()
	}
	return notifications, nil
}

// CountUnreadNotifications returns the number of unread notifications for a
// user.
func (ds *DataStore) CountUnreadNotifications(userID string) (int64, error) {
	var count int64
	err := ds.DB.Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkNotificationRead marks a single notification as read. The update is
// scoped to the owning user so one user cannot mutate another's rows.
func (ds *DataStore) MarkNotificationRead(id uint, userID string) error {
	result := ds.DB.Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a user as read.
func (ds *DataStore) MarkAllNotificationsRead(userID string) error {
	return ds.DB.Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// DeleteNotification removes a notification owned by the given user.
func (ds *DataStore) DeleteNotification(id uint, userID string) error {
	var notification Notification
	if err := ds.DB.First(&notification, id).Error; err != nil {
		return wrapNotFound(err)
	}
	if notification.UserID != userID {
		return ErrNotOwner
	}
	return ds.DB.Delete(&notification).Error
}
