package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/manishhsuthar/EduConnect/pkg/utils"
)

// EncryptedString is a string column encrypted at rest. Encryption
// happens on write and decryption on read, so application code and JSON
// responses only ever see the plaintext.
type EncryptedString string

func (e EncryptedString) Value() (driver.Value, error) {
	return utils.EncryptField(string(e))
}

func (e *EncryptedString) Scan(value interface{}) error {
	var stored string
	switch v := value.(type) {
	case nil:
		*e = ""
		return nil
	case string:
		stored = v
	case []byte:
		stored = string(v)
	default:
		return fmt.Errorf("cannot scan %T into EncryptedString", value)
	}

	plain, err := utils.DecryptField(stored)
	if err != nil {
		return err
	}
	*e = EncryptedString(plain)
	return nil
}
