package models

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// AnswerJSON is the stored correct answer of a question. It is a JSON
// document like datatypes.JSON, except that sqlite keeps it in a TEXT column:
// a JSON column there has numeric affinity and hands scalar keys back as
// numbers. Scan accepts those numbers as well.
type AnswerJSON datatypes.JSON

func (a AnswerJSON) Value() (driver.Value, error) {
	return datatypes.JSON(a).Value()
}

func (a *AnswerJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*a = AnswerJSON(strconv.FormatInt(v, 10))
		return nil
	case float64:
		*a = AnswerJSON(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	}

	var j datatypes.JSON
	if err := j.Scan(value); err != nil {
		return err
	}
	*a = AnswerJSON(j)
	return nil
}

func (a AnswerJSON) MarshalJSON() ([]byte, error) {
	return json.RawMessage(a).MarshalJSON()
}

func (a *AnswerJSON) UnmarshalJSON(b []byte) error {
	var j datatypes.JSON
	err := j.UnmarshalJSON(b)
	*a = AnswerJSON(j)
	return err
}

func (AnswerJSON) GormDataType() string {
	return "json"
}

func (AnswerJSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "TEXT"
	}
	return datatypes.JSON{}.GormDBDataType(db, field)
}
