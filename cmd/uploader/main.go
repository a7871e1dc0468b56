// Command uploader is a small CLI client for the restyle API. It applies the
// same pre-upload shrinking a browser client would, then posts the photo and
// fabric choice to /api/generate and prints the artifact URLs.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"server/internal/imageproc"
	"server/pkg/preprocess"
)

func main() {
	var (
		filePath  = flag.String("file", "", "path to the furniture photo (required)")
		fabricID  = flag.String("fabric", "", "preset fabric id, e.g. emerald-velvet")
		refPath   = flag.String("reference", "", "path to a custom fabric reference image")
		serverURL = flag.String("server", "http://localhost:8080", "API base URL")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: uploader -file photo.jpg [-fabric id | -reference swatch.jpg] [-server url]")
		os.Exit(2)
	}

	body, contentType, err := buildForm(*filePath, *fabricID, *refPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Post(*serverURL+"/api/generate", contentType, body)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var out struct {
		Success           bool   `json:"success"`
		Error             string `json:"error"`
		OriginalImageURL  string `json:"originalImageUrl"`
		GeneratedImageURL string `json:"generatedImageUrl"`
		GenerationTimeMs  int64  `json:"generationTimeMs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "error: unexpected response (%d): %v\n", resp.StatusCode, err)
		os.Exit(1)
	}
	if !out.Success {
		fmt.Fprintf(os.Stderr, "error (%d): %s\n", resp.StatusCode, out.Error)
		os.Exit(1)
	}

	fmt.Println("original: ", out.OriginalImageURL)
	fmt.Println("generated:", out.GeneratedImageURL)
	fmt.Printf("took %.1fs\n", float64(out.GenerationTimeMs)/1000)
}

func buildForm(filePath, fabricID, refPath string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)

	if err := writeImagePart(form, "furnitureFile", filePath, true); err != nil {
		return nil, "", err
	}
	if fabricID != "" {
		if err := form.WriteField("selectedFabricId", fabricID); err != nil {
			return nil, "", err
		}
	}
	if refPath != "" {
		if err := writeImagePart(form, "referenceFile", refPath, false); err != nil {
			return nil, "", err
		}
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return buf, form.FormDataContentType(), nil
}

func writeImagePart(form *multipart.Writer, field, path string, shrink bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	file := preprocess.File{
		Name:     filepath.Base(path),
		MIMEType: imageproc.MIMETypeFor(path),
		Data:     data,
	}
	if shrink {
		file, err = preprocess.ShrinkForUpload(file)
		if err != nil {
			return err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	header.Set("Content-Type", file.MIMEType)
	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(file.Data)
	return err
}
