// Package main is the vospect client CLI.
//
// Talks to a running vospectd over HTTP:
//
//	vospect enroll alice recording.wav
//	vospect verify alice probe.m4a
//	vospect remove alice
//	vospect health
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var flagServer string

var rootCmd = &cobra.Command{
	Use:           "vospect",
	Short:         "Client for the voice identity daemon",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <identity> <audio-file>",
	Short: "Enroll an identity from a recording",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAudio("/register", args[0], args[1])
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <identity> <audio-file>",
	Short: "Verify a recording against an enrolled identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postAudio("/verify", args[0], args[1])
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <identity>",
	Short: "Remove an enrolled identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := http.NewRequest(http.MethodDelete, flagServer+"/users/"+args[0], nil)
		if err != nil {
			return err
		}
		resp, err := client().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNoContent {
			fmt.Printf("removed %s\n", args[0])
			return nil
		}
		return responseError(resp)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Get(flagServer + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return responseError(resp)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s",
		"http://localhost:8080", "daemon base URL")
	rootCmd.AddCommand(enrollCmd, verifyCmd, removeCmd, healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func client() *http.Client {
	return &http.Client{Timeout: 2 * time.Minute}
}

// postAudio uploads a recording as a multipart form and prints the
// JSON response.
func postAudio(path, identity, audioPath string) error {
	f, err := os.Open(audioPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("user_id", identity); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := client().Post(flagServer+path, mw.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// 401 carries the decision body: print it rather than erroring.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("%s: %s", resp.Status, detail(data))
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func responseError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s: %s", resp.Status, detail(data))
}

// detail pulls the error message out of an API error body.
func detail(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return string(data)
}
