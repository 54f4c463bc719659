package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestRootCmdHelp(t *testing.T) {
	viper.Reset()

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)

	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	assert.NoError(t, err)

	output := b.String()
	assert.Contains(t, output, "workflowbot manages the guild workflow snapshot")
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "inspect")
	assert.Contains(t, output, "check")
	assert.Contains(t, output, "export")
}

func TestSortedKeysNumericFirst(t *testing.T) {
	keys := sortedKeys(4, func(yield func(string)) {
		yield("10")
		yield("2")
		yield("1")
		yield("abc")
	})
	assert.Equal(t, []string{"1", "2", "10", "abc"}, keys)
}
