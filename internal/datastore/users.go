package datastore

import (
	"gorm.io/gorm"

	"github.com/soundguard/soundguard-go/internal/errors"
)

// CreateUser inserts a new user record.
func (ds *DataStore) CreateUser(user *User) error {
	if err := ds.DB.Create(user).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "create_user").
			Build()
	}
	return nil
}

// GetUser retrieves a user by id.
func (ds *DataStore) GetUser(userID string) (User, error) {
	var user User
	if err := ds.DB.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return User{}, wrapNotFound(err)
	}
	return user, nil
}

// GetAllUsers returns every registered user. Used by the notification
// fan-out to enumerate alert targets.
func (ds *DataStore) GetAllUsers() ([]User, error) {
	var users []User
	if err := ds.DB.Find(&users).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_all_users").
			Build()
	}
	return users, nil
}

// UpdateUser persists changes to an existing user.
func (ds *DataStore) UpdateUser(user *User) error {
	if err := ds.DB.Save(user).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "update_user").
			Build()
	}
	return nil
}

// DeleteUser removes a user and their owned rows.
func (ds *DataStore) DeleteUser(userID string) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&NotificationSettings{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&MicrophoneSettings{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&StorageSettings{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ?", userID).Delete(&User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

// UserIDExists reports whether a user id is already taken.
func (ds *DataStore) UserIDExists(userID string) (bool, error) {
	var count int64
	if err := ds.DB.Model(&User{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailExists reports whether an email is already in use.
func (ds *DataStore) EmailExists(email string) (bool, error) {
	var count int64
	if err := ds.DB.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
