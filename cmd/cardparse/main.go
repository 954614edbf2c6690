// Command cardparse runs the insurance card extractor from the command line.
//
//	cardparse parse [files...]        parse OCR text files, or stdin when none
//	cardparse ocr --front a.png       OCR card images, then parse the text
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("cardparse failed")
	}
}
