package service

import "time"

// SetCardServiceNow replaces the clock of a CardService built by NewCardService.
func SetCardServiceNow(svc CardService, now func() time.Time) {
	svc.(*cardService).now = now
}

// SetShareServiceNow replaces the clock of a ShareService built by NewShareService.
func SetShareServiceNow(svc ShareService, now func() time.Time) {
	svc.(*shareService).now = now
}

// GenerateOTP exposes the access code generator.
var GenerateOTP = generateOTP
