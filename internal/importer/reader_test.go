package importer

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{line: "a;b;c", want: ';'},
		{line: "a,b,c", want: ','},
		{line: "a;b,c", want: ','},
		{line: "a;b;c,d", want: ';'},
		{line: "single", want: ','},
		{line: `"a,b";c;d`, want: ';'},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.line))
		})
	}
}

func TestReadHeader(t *testing.T) {
	t.Run("strips bom and normalizes", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("\ufeffDNI;Nombre;Nro. Cartón\r\n1;a;2\r\n"))

		header, delimiter, err := readHeader(r)
		require.NoError(t, err)

		assert.Equal(t, ';', delimiter)
		assert.Equal(t, []string{"dni", "nombre", "nro_carton"}, header)
	})

	t.Run("header without trailing newline", func(t *testing.T) {
		header, delimiter, err := readHeader(bufio.NewReader(strings.NewReader("dni,nombre")))
		require.NoError(t, err)

		assert.Equal(t, ',', delimiter)
		assert.Equal(t, []string{"dni", "nombre"}, header)
	})

	t.Run("empty file", func(t *testing.T) {
		_, _, err := readHeader(bufio.NewReader(strings.NewReader("")))
		require.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("only a bom", func(t *testing.T) {
		_, _, err := readHeader(bufio.NewReader(strings.NewReader("\ufeff\n")))
		require.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestRowReader_Next(t *testing.T) {
	content := "1,Ana,Paz\n\n2,Luis\n3,\"Sosa, Juan\",X,extra\n"
	rows := newRowReader(strings.NewReader(content), []string{"dni", "nombre", "apellido"}, ',')

	row, line, err := rows.next()
	require.NoError(t, err)
	assert.Equal(t, 2, line)
	assert.Equal(t, RawRow{"dni": "1", "nombre": "Ana", "apellido": "Paz"}, row)

	row, line, err = rows.next()
	require.NoError(t, err)
	assert.Equal(t, 4, line)
	assert.Equal(t, RawRow{"dni": "2", "nombre": "Luis"}, row)

	row, line, err = rows.next()
	require.NoError(t, err)
	assert.Equal(t, 5, line)
	assert.Equal(t, "Sosa, Juan", row["nombre"])

	_, _, err = rows.next()
	assert.Equal(t, io.EOF, err)
}

func TestRowReader_ReadFailure(t *testing.T) {
	src := &brokenReader{data: strings.NewReader("1,Ana\n"), err: errors.New("connection lost")}
	rows := newRowReader(src, []string{"dni", "nombre"}, ',')

	_, _, err := rows.next()
	require.NoError(t, err)

	_, line, err := rows.next()
	require.Error(t, err)
	assert.Equal(t, 3, line)
}
