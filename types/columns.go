package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ParticipantList and FileList are stored as JSON columns, so rooms and
// projects stay single rows and the read-modify-persist pattern covers the
// embedded lists too. Both need to implement driver.Valuer and sql.Scanner.

type ParticipantList []Participant

// Value return json value, implement driver.Valuer interface
func (l ParticipantList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	ba, err := json.Marshal([]Participant(l))
	return string(ba), err
}

// Scan scan value into the list, implements sql.Scanner interface
func (l *ParticipantList) Scan(val interface{}) error {
	ba, err := columnBytes(val)
	if err != nil {
		return err
	}
	t := make([]Participant, 0)
	err = json.Unmarshal(ba, &t)
	*l = ParticipantList(t)
	return err
}

// GormDataType gorm common data type
func (ParticipantList) GormDataType() string {
	return "participantlist"
}

// GormDBDataType gorm db data type
func (ParticipantList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

type FileList []FileEntry

// Value return json value, implement driver.Valuer interface
func (l FileList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	ba, err := json.Marshal([]FileEntry(l))
	return string(ba), err
}

// Scan scan value into the list, implements sql.Scanner interface
func (l *FileList) Scan(val interface{}) error {
	ba, err := columnBytes(val)
	if err != nil {
		return err
	}
	t := make([]FileEntry, 0)
	err = json.Unmarshal(ba, &t)
	*l = FileList(t)
	return err
}

// GormDataType gorm common data type
func (FileList) GormDataType() string {
	return "filelist"
}

// GormDBDataType gorm db data type
func (FileList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

func columnBytes(val interface{}) ([]byte, error) {
	switch v := val.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return []byte("[]"), nil
	default:
		return nil, errors.New(fmt.Sprint("failed to unmarshal JSON value:", val))
	}
}

func jsonColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "sqlite":
		return "JSON"
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	}
	return ""
}
