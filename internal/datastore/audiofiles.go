package datastore

import (
	"github.com/soundguard/soundguard-go/internal/errors"
)

// SaveAudioFile inserts metadata for an uploaded audio clip.
func (ds *DataStore) SaveAudioFile(file *AudioFile) error {
	if err := ds.DB.Create(file).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_audio_file").
			Build()
	}
	return nil
}

// GetAudioFile retrieves audio clip metadata by id.
func (ds *DataStore) GetAudioFile(id string) (AudioFile, error) {
	var file AudioFile
	if err := ds.DB.Where("id = ?", id).First(&file).Error; err != nil {
		return AudioFile{}, wrapNotFound(err)
	}
	return file, nil
}

// GetUserAudioFiles returns a user's uploaded clips, newest first.
func (ds *DataStore) GetUserAudioFiles(userID string) ([]AudioFile, error) {
	var files []AudioFile
	err := ds.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_user_audio_files").
			Build()
	}
	return files, nil
}

// DeleteAudioFile removes clip metadata owned by the given user.
func (ds *DataStore) DeleteAudioFile(id, userID string) error {
	var file AudioFile
	if err := ds.DB.Where("id = ?", id).First(&file).Error; err != nil {
		return wrapNotFound(err)
	}
	if file.UserID != userID {
		return ErrNotOwner
	}
	return ds.DB.Delete(&file).Error
}
