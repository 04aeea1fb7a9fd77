package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var creatioCmd = &cobra.Command{
	Use:   "creatio",
	Short: "Transfer files to and from Creatio records",
}

var (
	downloadDocID  string
	downloadOutput string
)

var creatioDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a Creatio file by document id",
	RunE:  runCreatioDownload,
}

var (
	uploadRecordID string
	uploadFile     string
	uploadName     string
)

var creatioUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Attach a local file to a Creatio record",
	RunE:  runCreatioUpload,
}

func init() {
	creatioDownloadCmd.Flags().StringVar(&downloadDocID, "doc-id", "", "Creatio file id")
	creatioDownloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Output path (default: <doc-id>.pdf)")
	_ = creatioDownloadCmd.MarkFlagRequired("doc-id")

	creatioUploadCmd.Flags().StringVar(&uploadRecordID, "record-id", "", "Creatio record id")
	creatioUploadCmd.Flags().StringVar(&uploadFile, "file", "", "File to upload")
	creatioUploadCmd.Flags().StringVar(&uploadName, "name", "", "File name in Creatio (default: base name of --file)")
	_ = creatioUploadCmd.MarkFlagRequired("record-id")
	_ = creatioUploadCmd.MarkFlagRequired("file")

	creatioCmd.AddCommand(creatioDownloadCmd, creatioUploadCmd)
}

func runCreatioDownload(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	data, err := application.FileService.DownloadFile(cmd.Context(), downloadDocID)
	if err != nil {
		return err
	}

	output := downloadOutput
	if output == "" {
		output = downloadDocID + ".pdf"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Descarcat %d bytes in %s\n", len(data), output)
	return nil
}

func runCreatioUpload(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(uploadFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", uploadFile, err)
	}

	name := uploadName
	if name == "" {
		name = filepath.Base(uploadFile)
	}

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	resp, err := application.FileService.UploadFile(cmd.Context(), uploadRecordID, name, data)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	fmt.Printf("Incarcat %s (%d bytes) pe inregistrarea %s\n%s\n", name, len(data), uploadRecordID, out)
	return nil
}
